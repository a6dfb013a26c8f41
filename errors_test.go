package dataobject

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/broady/dataobject/reflection"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeConflict, http.StatusConflict},
		{CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{CodeCanceled, 499},
		{CodeInternal, http.StatusInternalServerError},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeDeadlineExceeded, http.StatusGatewayTimeout},
		{ErrorCode("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestError_WithDetail(t *testing.T) {
	base := NewError(CodeNotFound, "order not found")
	withID := base.WithDetail("id", 7)
	both := withID.WithDetails(map[string]any{"increment_id": "100000007"})

	if base.Details != nil {
		t.Error("WithDetail must not modify the receiver")
	}
	if withID.Details["id"] != 7 || len(withID.Details) != 1 {
		t.Errorf("unexpected details: %v", withID.Details)
	}
	if both.Details["id"] != 7 || both.Details["increment_id"] != "100000007" {
		t.Errorf("unexpected merged details: %v", both.Details)
	}
	if same := base.WithDetails(nil); same != base {
		t.Error("WithDetails(nil) should return the receiver")
	}
	if got := both.Error(); got != "not_found: order not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDefaultErrorTransformer(t *testing.T) {
	type withEmail struct {
		Email string `validate:"required,email"`
	}
	valErr := validator.New().Struct(withEmail{Email: "nope"})

	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
		wantMsg  string
	}{
		{"service error", NewError(CodeConflict, "taken"), CodeConflict, "taken"},
		{"wrapped service error", fmt.Errorf("place: %w", NewError(CodeNotFound, "sku")), CodeNotFound, "sku"},
		{"deadline", context.DeadlineExceeded, CodeDeadlineExceeded, "request timeout"},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), CodeCanceled, "context canceled"},
		{"validation", valErr, CodeInvalidArgument, "Email: must be a valid email address"},
		{"plain", errors.New("disk full"), CodeInternal, "disk full"},
		{"joined", errors.Join(NewError(CodeNotFound, "a"), errors.New("b")), CodeNotFound, "not_found: a; b"},
		{"joined plain first", errors.Join(errors.New("disk full"), NewError(CodeConflict, "taken")), CodeInternal, "disk full; conflict: taken"},
		{"wrapped join", fmt.Errorf("place: %w", errors.Join(NewError(CodeNotFound, "sku"))), CodeNotFound, "sku"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultErrorTransformer(tt.err)
			if got.Code != tt.wantCode || got.Message != tt.wantMsg {
				t.Errorf("got %s %q, want %s %q", got.Code, got.Message, tt.wantCode, tt.wantMsg)
			}
		})
	}

	if DefaultErrorTransformer(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestDefaultErrorTransformer_Reflection(t *testing.T) {
	mismatch := reflection.Errorf(reflection.CodeTypeMismatch, "cannot use \"abc\" as int")
	got := DefaultErrorTransformer(fmt.Errorf("priority: %w", mismatch))
	if got.Code != CodeInvalidArgument {
		t.Errorf("expected invalid_argument, got %s", got.Code)
	}
	if got.Details["reason"] != "type_mismatch" {
		t.Errorf("unexpected details: %v", got.Details)
	}

	cyclic := reflection.Errorf(reflection.CodeCyclicReference, "loop").WithDetail("type", "Node")
	got = DefaultErrorTransformer(cyclic)
	if got.Code != CodeInternal || got.Details["reason"] != "cyclic_reference" || got.Details["type"] != "Node" {
		t.Errorf("unexpected mapping: %+v", got)
	}
}

func TestFormatValidationError(t *testing.T) {
	type sample struct {
		Name   string `validate:"min=3"`
		Status string `validate:"oneof=pending processing"`
		Qty    int    `validate:"gt=0"`
	}
	err := validator.New().Struct(sample{Name: "ab", Status: "lost"})
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}

	want := map[string]string{
		"Name":   "must be at least 3 characters",
		"Status": "must be one of: pending processing",
		"Qty":    "must be greater than 0",
	}
	for _, ve := range valErrs {
		if got := formatValidationError(ve); got != want[ve.Field()] {
			t.Errorf("%s: got %q, want %q", ve.Field(), got, want[ve.Field()])
		}
	}
}

func TestCustomErrorTransformer(t *testing.T) {
	errOutOfStock := errors.New("out of stock")
	transformer := func(err error) *Error {
		if errors.Is(err, errOutOfStock) {
			return NewError(CodeConflict, "item is out of stock")
		}
		return nil
	}

	app := newTestApp(t).WithErrorTransformer(transformer)
	app.Service("Orders").Register("Place", Exec(func(ctx context.Context, req *commentRequest) (Empty, error) {
		if req.Comment == "stock" {
			return nil, errOutOfStock
		}
		return nil, errDatabase
	}))

	w := newCommentRequest("stock").Serve(app.Handler())
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	w = newCommentRequest("other").Serve(app.Handler())
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected fallback to the default transformer, got %d", w.Code)
	}
}
