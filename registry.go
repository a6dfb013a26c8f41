package dataobject

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
)

// metaService is the reserved first path element of the app's own
// description endpoints.
const metaService = "_meta"

const defaultMaxRequestBodySize = 1 << 20

// settings is the app configuration every call sees. The router copies it
// into the call context.
type settings struct {
	serializer         *Serializer
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []UnaryInterceptor
	logger             *slog.Logger
	maxRequestBodySize uint64
	frontURL           string
}

type routeKey struct {
	service, name string
}

func (k routeKey) String() string { return k.service + "." + k.name }

// App routes /{Service}/{Endpoint} requests to registered endpoints and
// serializes their data object results. Handler returns the http.Handler to
// serve.
type App struct {
	settings

	mu          sync.RWMutex
	routes      map[routeKey]*serviceRoute
	middlewares []func(http.Handler) http.Handler
}

// NewApp returns an App serializing results with s. A nil Serializer
// encodes every result with encoding/json.
func NewApp(s *Serializer) *App {
	return &App{
		settings: settings{
			serializer:         s,
			maxRequestBodySize: defaultMaxRequestBodySize,
		},
		routes: make(map[routeKey]*serviceRoute),
	}
}

// WithErrorTransformer installs fn ahead of DefaultErrorTransformer.
func (a *App) WithErrorTransformer(fn ErrorTransformer) *App {
	a.errorTransformer = fn
	return a
}

// WithMaskInternalErrors hides the message of internal errors from clients.
// Interceptors and logs still see the original error.
func (a *App) WithMaskInternalErrors() *App {
	a.maskInternalErrors = true
	return a
}

// WithUnaryInterceptor adds an interceptor that runs around every endpoint.
// App interceptors run first, then Service interceptors, then Handler
// interceptors, each level in the order added.
func (a *App) WithUnaryInterceptor(i UnaryInterceptor) *App {
	a.interceptors = append(a.interceptors, i)
	return a
}

// WithMiddleware wraps the app's handler. The first middleware added is the
// outermost.
func (a *App) WithMiddleware(mw func(http.Handler) http.Handler) *App {
	a.middlewares = append(a.middlewares, mw)
	return a
}

// WithLogger sets the logger. slog.Default is used otherwise.
func (a *App) WithLogger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// WithMaxRequestBodySize limits Exec request bodies. 0 disables the limit;
// the default is 1MB. Handler.WithMaxRequestBodySize overrides it.
func (a *App) WithMaxRequestBodySize(size uint64) *App {
	a.maxRequestBodySize = size
	return a
}

// WithFrontURL sets the store front origin sent as
// Access-Control-Allow-Origin with every result.
func (a *App) WithFrontURL(url string) *App {
	a.frontURL = url
	return a
}

// Handler returns the app wrapped in its middleware.
//
//	app := dataobject.NewApp(serializer).WithMiddleware(middleware.RequestID)
//	http.ListenAndServe(":8080", app.Handler())
func (a *App) Handler() http.Handler {
	var h http.Handler = http.HandlerFunc(a.serveHTTP)
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	return h
}

// Service returns the namespace for endpoints served under /name/.
func (a *App) Service(name string) *Service {
	if name == metaService {
		panic("dataobject: service name " + metaService + " is reserved")
	}
	return &Service{app: a, name: name}
}

// Routes returns the metadata of every registered endpoint, sorted by
// path.
func (a *App) Routes() []*RouteMetadata {
	a.mu.RLock()
	defer a.mu.RUnlock()
	routes := make([]*RouteMetadata, 0, len(a.routes))
	for _, r := range a.routes {
		routes = append(routes, r.Metadata())
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

func (a *App) getLogger() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

func (a *App) serveHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			a.getLogger().Error("PANIC recovered",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			writeError(w, Errorf(CodeInternal, "internal server error (panic): %v", rec), a.logger)
		}
	}()

	parts := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if parts[0] == metaService {
		a.serveMeta(w, req, parts[1:])
		return
	}
	r, svcErr := a.lookup(parts)
	if svcErr != nil {
		writeError(w, svcErr, a.logger)
		return
	}
	if want := r.Metadata().HTTPMethod; req.Method != want {
		w.Header().Set("Allow", want)
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed, expected %s", req.Method, want), a.logger)
		return
	}

	ctx := newContext(req.Context(), w, req, r.key.service, r.key.name)
	ctx.settings = a.settings
	r.serveHTTP(ctx)
}

// lookup finds the route for the path elements {Service}/{Endpoint}.
func (a *App) lookup(parts []string) (*serviceRoute, *Error) {
	if len(parts) != 2 {
		return nil, NewError(CodeNotFound, "route not found")
	}
	a.mu.RLock()
	r, ok := a.routes[routeKey{parts[0], parts[1]}]
	a.mu.RUnlock()
	if !ok {
		return nil, NewError(CodeNotFound, "route not found")
	}
	return r, nil
}

// Service groups endpoints under a common name.
type Service struct {
	app          *App
	name         string
	interceptors []UnaryInterceptor
}

// WithUnaryInterceptor adds an interceptor to every endpoint registered on
// s afterwards. It runs after the App interceptors.
func (s *Service) WithUnaryInterceptor(i UnaryInterceptor) *Service {
	s.interceptors = append(s.interceptors, i)
	return s
}

// Register serves handler at /{Service}/{name}. Registering the same name
// twice replaces the first endpoint and logs a warning.
func (s *Service) Register(name string, handler Endpoint) {
	h, ok := handler.(endpointHandler)
	if !ok {
		panic(fmt.Sprintf("dataobject: %T was not created with Query or Exec", handler))
	}

	key := routeKey{s.name, name}
	s.app.mu.Lock()
	defer s.app.mu.Unlock()
	if _, exists := s.app.routes[key]; exists {
		s.app.getLogger().Warn("duplicate route registration",
			slog.String("service", s.name),
			slog.String("method", name),
			slog.String("route", key.String()))
	}
	s.app.routes[key] = &serviceRoute{
		inner:        h,
		key:          key,
		serializer:   s.app.serializer,
		interceptors: s.interceptors,
	}
}

// serviceRoute is a registered endpoint together with its service's
// interceptors.
type serviceRoute struct {
	inner        endpointHandler
	key          routeKey
	serializer   *Serializer
	interceptors []UnaryInterceptor
}

func (r *serviceRoute) serveHTTP(ctx *rpcContext) {
	if len(r.interceptors) > 0 {
		ctx.interceptors = append(append([]UnaryInterceptor(nil), ctx.interceptors...), r.interceptors...)
	}
	r.inner.serveHTTP(ctx)
}

func (r *serviceRoute) Metadata() *RouteMetadata {
	m := r.inner.Metadata()
	m.Service = r.key.service
	m.Name = r.key.name
	m.Path = "/" + r.key.service + "/" + r.key.name
	if r.serializer != nil {
		m.ResultType, _ = r.serializer.TypeName(m.Response)
	}
	return m
}
