package signposting

import (
	"errors"
	"fmt"
	"strings"
)

// Parse reads a Link header value:
//
//	links      = link-value *( "," link-value )
//	link-value = "<" URI ">" *( ";" param )
//	param      = IDENT [ "=" ( IDENT / QUOTED ) ]
func Parse(header string) ([]WebLink, error) {
	if strings.TrimSpace(header) == "" {
		return nil, errors.New("Link header must not be empty")
	}
	tokens, err := Lex(header)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.links()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt TokenType) (Token, error) {
	t := p.next()
	if t.Type != tt {
		return t, fmt.Errorf("Expected %s but found %s('%s') at position %d", tt, t.Type, t.Text, t.Position)
	}
	return t, nil
}

func (p *parser) links() ([]WebLink, error) {
	var links []WebLink
	for {
		link, err := p.linkValue()
		if err != nil {
			return nil, err
		}
		links = append(links, link)

		switch p.peek().Type {
		case TokenEOF:
			return links, nil
		case TokenComma:
			p.next()
			if p.peek().Type == TokenEOF {
				return nil, errors.New("Unexpected trailing comma")
			}
		default:
			t := p.peek()
			return nil, fmt.Errorf("Expected %s but found %s('%s') at position %d", TokenComma, t.Type, t.Text, t.Position)
		}
	}
}

func (p *parser) linkValue() (WebLink, error) {
	if _, err := p.expect(TokenLT); err != nil {
		return WebLink{}, err
	}
	uri, err := p.expect(TokenURI)
	if err != nil {
		return WebLink{}, err
	}
	if _, err := p.expect(TokenGT); err != nil {
		return WebLink{}, err
	}

	link := WebLink{Reference: uri.Text}
	for p.peek().Type == TokenSemicolon {
		p.next()
		param, err := p.param()
		if err != nil {
			return WebLink{}, err
		}
		link.Params = append(link.Params, param)
	}
	return link, nil
}

func (p *parser) param() (Param, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return Param{}, err
	}
	param := Param{Name: strings.ToLower(name.Text)}
	if p.peek().Type != TokenEquals {
		return param, nil
	}
	p.next()
	value := p.next()
	if value.Type != TokenIdent && value.Type != TokenQuoted {
		return Param{}, fmt.Errorf("Expected %s but found %s('%s') at position %d", TokenIdent, value.Type, value.Text, value.Position)
	}
	param.Value = value.Text
	param.HasValue = true
	return param, nil
}
