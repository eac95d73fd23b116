package tsvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Import errors
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidEncoding = errors.New("file is not UTF-8 encoded")
	ErrMissingHeader   = errors.New("file is missing a header row")
	ErrNoDataRows      = errors.New("file contains no data rows")
	ErrTooManyRows     = errors.New("file exceeds the maximum number of rows")
	ErrUnknownDomain   = errors.New("could not infer the measurement domain from the header")
)

// Row error codes
const (
	CodeRequired = "REQUIRED"
	CodeInvalid  = "INVALID_VALUE"
)

// RowError is a validation failure located in a row and column
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection gathers row errors up to a limit. It is itself an error
// so a failed import can be returned as one value.
type ErrorCollection struct {
	errors    []RowError
	maxErrors int
	total     int
}

// NewErrorCollection creates a collection keeping at most maxErrors entries
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequired records a missing mandatory value
func (ec *ErrorCollection) AddRequired(row int, column string) {
	ec.Add(RowError{Row: row, Column: column, Code: CodeRequired,
		Message: fmt.Sprintf("%s: missing mandatory metadata", column)})
}

// AddInvalid records a malformed value
func (ec *ErrorCollection) AddInvalid(row int, column, message, value string) {
	ec.Add(RowError{Row: row, Column: column, Code: CodeInvalid, Message: message, Value: value})
}

// Errors returns the kept errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the number of errors including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.total
}

// HasErrors reports whether any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.total > 0
}

// IsTruncated reports whether errors were dropped
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.total > len(ec.errors)
}

// Error implements the error interface
func (ec *ErrorCollection) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d import error(s)", ec.total)
	for _, e := range ec.errors {
		sb.WriteString("; ")
		sb.WriteString(e.Error())
	}
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, "; and %d more", ec.total-len(ec.errors))
	}
	return sb.String()
}
