package dataobject

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/broady/dataobject/reflection"
)

// ErrorCode is the machine-readable part of an error envelope.
type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodeNotFound         ErrorCode = "not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"
	CodeConflict         ErrorCode = "conflict"
	CodePayloadTooLarge  ErrorCode = "payload_too_large"
	CodeCanceled         ErrorCode = "canceled"
	CodeDeadlineExceeded ErrorCode = "deadline_exceeded"
	CodeInternal         ErrorCode = "internal"
	CodeUnavailable      ErrorCode = "unavailable"
)

var statusByCode = map[ErrorCode]int{
	CodeInvalidArgument:  http.StatusBadRequest,
	CodeUnauthenticated:  http.StatusUnauthorized,
	CodeNotFound:         http.StatusNotFound,
	CodeMethodNotAllowed: http.StatusMethodNotAllowed,
	CodeConflict:         http.StatusConflict,
	CodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	CodeCanceled:         499, // client closed request
	CodeDeadlineExceeded: http.StatusGatewayTimeout,
	CodeInternal:         http.StatusInternalServerError,
	CodeUnavailable:      http.StatusServiceUnavailable,
}

// HTTPStatus returns the response status for c. Unknown codes are 500.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is the body of an {"error": ...} envelope.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	return e.WithDetails(map[string]any{key: value})
}

// WithDetails returns a copy of e with details merged in. The receiver is
// returned as is when details is empty.
func (e *Error) WithDetails(details map[string]any) *Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	return &Error{Code: e.Code, Message: e.Message, Details: merged}
}

// ErrorTransformer maps a handler error to an envelope. Returning nil falls
// back to DefaultErrorTransformer.
type ErrorTransformer func(error) *Error

// errorMappers run in order; the first non-nil result wins.
var errorMappers = []ErrorTransformer{
	func(err error) *Error {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return svcErr
		}
		return nil
	},
	func(err error) *Error {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return NewError(CodeDeadlineExceeded, "request timeout")
		case errors.Is(err, context.Canceled):
			return NewError(CodeCanceled, "context canceled")
		}
		return nil
	},
	func(err error) *Error {
		var refErr *reflection.Error
		if errors.As(err, &refErr) {
			return serializationError(err, refErr)
		}
		return nil
	},
	func(err error) *Error {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			return validationError(valErrs)
		}
		return nil
	},
}

// DefaultErrorTransformer maps service errors, context errors, serialization
// errors, validation errors and joined errors. Anything else is internal; use
// App.WithMaskInternalErrors to hide its message from clients.
func DefaultErrorTransformer(err error) *Error {
	if err == nil {
		return nil
	}
	// errors.As walks into joined errors, so they are matched first.
	if svcErr := joinedError(err); svcErr != nil {
		return svcErr
	}
	for _, mapper := range errorMappers {
		if svcErr := mapper(err); svcErr != nil {
			return svcErr
		}
	}
	return NewError(CodeInternal, err.Error())
}

// joinedError takes the code of the first error and keeps every message.
func joinedError(err error) *Error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) == 0 {
		return nil
	}
	errs := joined.Unwrap()
	first := DefaultErrorTransformer(errs[0])
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &Error{Code: first.Code, Message: strings.Join(msgs, "; "), Details: first.Details}
}

// serializationError maps a reflection failure. A value that does not fit
// its declared type is the caller's fault; every other failure is a defect in
// a data object's declared contract.
func serializationError(err error, refErr *reflection.Error) *Error {
	code := CodeInternal
	if refErr.Code == reflection.CodeTypeMismatch {
		code = CodeInvalidArgument
	}
	return NewError(code, err.Error()).
		WithDetails(refErr.Details).
		WithDetail("reason", string(refErr.Code))
}

func validationError(valErrs validator.ValidationErrors) *Error {
	details := make(map[string]any, len(valErrs))
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		details[ve.Field()] = msg
		messages = append(messages, ve.Field()+": "+msg)
	}
	return &Error{Code: CodeInvalidArgument, Message: strings.Join(messages, "; "), Details: details}
}

// validationMessages holds a format per validator tag. %s is the tag param.
var validationMessages = map[string]string{
	"required": "required",
	"min":      "must be at least %s characters",
	"max":      "must be at most %s characters",
	"len":      "must be exactly %s characters",
	"eq":       "must equal %s",
	"ne":       "must not equal %s",
	"gt":       "must be greater than %s",
	"gte":      "must be at least %s",
	"lt":       "must be less than %s",
	"lte":      "must be at most %s",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
	"oneof":    "must be one of: %s",
}

func formatValidationError(ve validator.FieldError) string {
	if format, ok := validationMessages[ve.Tag()]; ok {
		if strings.Contains(format, "%s") {
			return fmt.Sprintf(format, ve.Param())
		}
		return format
	}
	if ve.Param() != "" {
		return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
	}
	return fmt.Sprintf("failed %s validation", ve.Tag())
}

func writeError(w http.ResponseWriter, svcErr *Error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(svcErr.Code.HTTPStatus())
	if err := encodeErrorResponse(w, svcErr); err != nil {
		// The status line is already out.
		logger.Error("failed to encode error response",
			slog.String("code", string(svcErr.Code)),
			slog.String("message", svcErr.Message),
			slog.Any("error", err))
	}
}
