package survey

import (
	"errors"
	"fmt"
)

var (
	ErrFormat     = errors.New("malformed survey data")
	ErrIndex      = errors.New("question index out of range")
	ErrValidation = errors.New("invalid survey edit")
)

// FormatError reports interchange data that could not be parsed
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %v", ErrFormat, e.Err)
}

func (e *FormatError) Unwrap() []error { return []error{ErrFormat, e.Err} }

// IndexError reports a mutation addressing a question that does not exist
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %d (document has %d questions)", ErrIndex, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndex }

// ValidationError reports an edit that would break a question or branch-rule invariant
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
