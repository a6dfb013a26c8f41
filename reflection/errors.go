package reflection

import (
	"fmt"
)

// ErrorCode identifies a category of reflection failure.
type ErrorCode string

const (
	CodeMissingReturnAnnotation ErrorCode = "missing_return_annotation"
	CodeInvalidTypeName         ErrorCode = "invalid_type_name"
	CodeUnresolvableType        ErrorCode = "unresolvable_type"
	CodeTypeMismatch            ErrorCode = "type_mismatch"
	CodeAmbiguousParamType      ErrorCode = "ambiguous_param_type"
	CodeCyclicReference         ErrorCode = "cyclic_reference"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrMissingReturnAnnotation = &Error{Code: CodeMissingReturnAnnotation}
	ErrInvalidTypeName         = &Error{Code: CodeInvalidTypeName}
	ErrUnresolvableType        = &Error{Code: CodeUnresolvableType}
	ErrTypeMismatch            = &Error{Code: CodeTypeMismatch}
	ErrAmbiguousParamType      = &Error{Code: CodeAmbiguousParamType}
	ErrCyclicReference         = &Error{Code: CodeCyclicReference}
)

// Error is returned for every failure raised by this package. None of them
// are retryable: the inputs are static metadata.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches sentinels by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Errorf creates an Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail returns a copy of the error with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}
