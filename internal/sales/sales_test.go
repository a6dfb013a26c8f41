package sales

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/broady/dataobject"
	"github.com/broady/dataobject/internal/sales/api/data"
	"github.com/broady/dataobject/reflection"
)

var placedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newSerializer(t *testing.T) *dataobject.Serializer {
	t.Helper()
	catalog := reflection.NewCatalog()
	require.NoError(t, data.AddTo(catalog))
	s := dataobject.NewDefaultSerializer(catalog)
	require.NoError(t, s.Validate())
	return s
}

func newRepository(t *testing.T) *Repository {
	t.Helper()
	repo := NewRepository(newSerializer(t).TypeProcessor())
	repo.now = func() time.Time { return placedAt }
	repo.Seed()
	return repo
}

// newHandler serves the sales services over a seeded repository.
func newHandler(t *testing.T) (http.Handler, *Repository) {
	t.Helper()
	s := newSerializer(t)
	repo := NewRepository(s.TypeProcessor())
	repo.now = func() time.Time { return placedAt }
	repo.Seed()

	app := dataobject.NewApp(s).WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	Register(app, NewHandlers(repo))
	return app.Handler(), repo
}
