package main

import (
	"fmt"
	"log/slog"

	"github.com/samber/do"

	"github.com/broady/dataobject"
	"github.com/broady/dataobject/internal/config"
	"github.com/broady/dataobject/internal/docsource"
	"github.com/broady/dataobject/internal/sales"
	"github.com/broady/dataobject/internal/sales/api/data"
	"github.com/broady/dataobject/middleware"
	"github.com/broady/dataobject/reflection"
)

// sourceDocs is the package pattern documentation is loaded from. Empty
// disables loading.
type sourceDocs string

// newInjector wires the server. Services are built on first use.
func newInjector(cfg *config.Config, logger *slog.Logger, docs sourceDocs) *do.Injector {
	i := do.New()
	do.ProvideValue(i, cfg)
	do.ProvideValue(i, logger)
	do.ProvideValue(i, docs)
	do.Provide(i, provideCatalog)
	do.Provide(i, provideSerializer)
	do.Provide(i, provideRepository)
	do.Provide(i, provideApp)
	return i
}

func provideCatalog(i *do.Injector) (*reflection.Catalog, error) {
	catalog := reflection.NewCatalog()
	if err := data.AddTo(catalog); err != nil {
		return nil, err
	}
	if pattern := do.MustInvoke[sourceDocs](i); pattern != "" {
		docs, err := docsource.Load(string(pattern))
		if err != nil {
			return nil, fmt.Errorf("load docs: %w", err)
		}
		n := docs.Apply(catalog)
		do.MustInvoke[*slog.Logger](i).Debug("loaded source docs",
			slog.String("pattern", string(pattern)),
			slog.Int("types", n))
	}
	return catalog, nil
}

func provideSerializer(i *do.Injector) (*dataobject.Serializer, error) {
	catalog, err := do.Invoke[*reflection.Catalog](i)
	if err != nil {
		return nil, err
	}
	s := dataobject.NewDefaultSerializer(catalog)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func provideRepository(i *do.Injector) (*sales.Repository, error) {
	s, err := do.Invoke[*dataobject.Serializer](i)
	if err != nil {
		return nil, err
	}
	repo := sales.NewRepository(s.TypeProcessor())
	repo.Seed()
	return repo, nil
}

func provideApp(i *do.Injector) (*dataobject.App, error) {
	s, err := do.Invoke[*dataobject.Serializer](i)
	if err != nil {
		return nil, err
	}
	repo, err := do.Invoke[*sales.Repository](i)
	if err != nil {
		return nil, err
	}
	cfg := do.MustInvoke[*config.Config](i)
	logger := do.MustInvoke[*slog.Logger](i)

	cors := middleware.DefaultCORSConfig()
	if cfg.Front.URL != "" {
		cors = middleware.FrontCORSConfig(cfg.Front.URL)
	}
	app := dataobject.NewApp(s).
		WithLogger(logger).
		WithFrontURL(cfg.Front.URL).
		WithMaxRequestBodySize(cfg.Server.RequestBodyLimit()).
		WithUnaryInterceptor(middleware.LoggingInterceptor(logger)).
		WithMiddleware(middleware.CORS(cors)).
		WithMiddleware(middleware.RequestID)
	if cfg.Server.MaskErrors {
		app.WithMaskInternalErrors()
	}
	sales.Register(app, sales.NewHandlers(repo))
	return app, nil
}
