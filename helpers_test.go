package dataobject

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/broady/dataobject/internal/sales/api/data"
	"github.com/broady/dataobject/reflection"
	"github.com/broady/dataobject/testutil"
)

// newTestSerializer registers the sales data objects.
func newTestSerializer(t *testing.T) *Serializer {
	t.Helper()
	catalog := reflection.NewCatalog()
	if err := data.AddTo(catalog); err != nil {
		t.Fatalf("catalog data objects: %v", err)
	}
	s := NewDefaultSerializer(catalog)
	if err := s.Validate(); err != nil {
		t.Fatalf("validate data objects: %v", err)
	}
	return s
}

// newTestApp returns an app that logs into a discarded buffer.
func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(newTestSerializer(t)).WithLogger(discardLogger())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errDatabase = errors.New("connection refused")

// undescribedRecord is cataloged without any return annotations.
type undescribedRecord struct{ name string }

func (r *undescribedRecord) GetName() string { return r.name }

func newBufferedLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func sampleOrder() *data.Order {
	return &data.Order{
		ID:          1,
		IncrementID: "100000001",
		Status:      data.StatusProcessing,
		Customer:    &data.Customer{ID: 7, Email: "ada@example.com", Firstname: "Ada", Lastname: "Lovelace"},
		Items: []*data.OrderItem{
			{Sku: "24-MB01", Name: "Joust Duffle Bag", Qty: 2, Price: 34},
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newCommentRequest(comment string) *testutil.RequestBuilder {
	return testutil.NewRequest().POST("/Orders/Place").WithJSON(commentRequest{Comment: comment})
}
