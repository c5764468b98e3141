package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by the loaders and the analytics.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrParse           = errors.New("parse error")
	ErrEmptyPortfolio  = fmt.Errorf("%w: portfolio has no bonds", ErrInvalidInput)
	ErrZeroMarketValue = fmt.Errorf("%w: total market value is zero", ErrInvalidInput)
)

// MissingColumnsError reports the required portfolio columns absent from an input table.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Missing required columns: %s. Please check your data headers.", strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrInvalidInput }

// ParseError captures a malformed cell with its position in the input.
type ParseError struct {
	Line   int // 1-based, counting the header
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error at line %d", e.Line)
	if e.Column != "" {
		msg += fmt.Sprintf(", column %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": invalid value %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
