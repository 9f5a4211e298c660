package mappers

import (
	"errors"
	"fmt"
)

var errNoClosingQuote = errors.New("request field has no closing quote")

// TokenizeError is returned by the strict tokenizer when a line has malformed quoting
type TokenizeError struct {
	Err error
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenize failed: %s", e.Err)
}

func (e *TokenizeError) Unwrap() error {
	return e.Err
}

// LineParseError is returned when neither the strict nor the fallback strategy could parse a line
type LineParseError struct {
	Line        string
	StrictErr   error
	FallbackErr error
}

func (e *LineParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.StrictErr, e.FallbackErr, e.Line)
}

func (e *LineParseError) Unwrap() []error {
	return []error{e.StrictErr, e.FallbackErr}
}
