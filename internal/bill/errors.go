package bill

import "fmt"

// ParseError indicates a value could not be converted to a decimal amount.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string {
	return e.msg
}

func newParseError(format string, args ...any) *ParseError {
	return &ParseError{msg: fmt.Sprintf(format, args...)}
}

// ValidationError indicates required bill fields are missing or the
// top-level input could not be deserialized.
type ValidationError struct {
	msg string
	err error
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Unwrap exposes the underlying cause (e.g. a JSON syntax error).
func (e *ValidationError) Unwrap() error {
	return e.err
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func wrapValidationError(err error, format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...), err: err}
}
