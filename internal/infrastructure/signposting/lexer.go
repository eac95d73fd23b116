// Package signposting reads and writes RFC 8288 web links, the Link header
// format used for FAIR signposting.
package signposting

import (
	"fmt"
	"strings"
)

// TokenType classifies a lexical token of a Link header
type TokenType int

const (
	TokenLT TokenType = iota
	TokenURI
	TokenGT
	TokenSemicolon
	TokenEquals
	TokenComma
	TokenQuoted
	TokenIdent
	TokenEOF
)

var tokenNames = [...]string{"LT", "URI", "GT", "SEMICOLON", "EQUALS", "COMMA", "QUOTED", "IDENT", "EOF"}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexeme with the position of its first character
type Token struct {
	Type     TokenType
	Text     string
	Position int
}

// Lex splits a Link header value into tokens. The result always ends with
// an EOF token.
func Lex(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case isWhitespace(r):
			i++
		case r == '<':
			tokens = append(tokens, Token{TokenLT, "<", i})
			end := indexRune(runes, i+1, '>')
			if end < 0 {
				return nil, fmt.Errorf("Unterminated URI reference: missing '>' at position %d", len(runes))
			}
			tokens = append(tokens, Token{TokenURI, strings.TrimSpace(string(runes[i+1 : end])), i + 1})
			tokens = append(tokens, Token{TokenGT, ">", end})
			i = end + 1
		case r == '>':
			tokens = append(tokens, Token{TokenGT, ">", i})
			i++
		case r == ';':
			tokens = append(tokens, Token{TokenSemicolon, ";", i})
			i++
		case r == '=':
			tokens = append(tokens, Token{TokenEquals, "=", i})
			i++
		case r == ',':
			tokens = append(tokens, Token{TokenComma, ",", i})
			i++
		case r == '"':
			text, next, err := lexQuoted(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{TokenQuoted, text, i})
			i = next
		default:
			start := i
			for i < len(runes) && !isWhitespace(runes[i]) && !strings.ContainsRune("<>;=,\"", runes[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("Unexpected character '%c' at position %d", r, start)
			}
			tokens = append(tokens, Token{TokenIdent, string(runes[start:i]), start})
		}
	}
	return append(tokens, Token{TokenEOF, "", len(runes)}), nil
}

// lexQuoted reads a quoted-string starting at the opening quote. A
// backslash escapes the following character.
func lexQuoted(runes []rune, start int) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) {
				i++
				sb.WriteRune(runes[i])
			}
		case '"':
			return sb.String(), i + 1, nil
		default:
			sb.WriteRune(runes[i])
		}
	}
	return "", 0, fmt.Errorf("Unterminated quoted-string: missing closing '\"' at position %d", len(runes))
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
