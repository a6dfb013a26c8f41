package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists the origins a cross-domain request can be executed
	// from. "*" allows every origin. Default: ["*"]
	AllowedOrigins []string

	// AllowedMethods lists the methods the client is allowed to use.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string

	// AllowedHeaders lists the headers the client is allowed to send.
	// Default: ["Content-Type", "Authorization", "X-Request-Id"]
	AllowedHeaders []string

	// ExposedHeaders lists the response headers scripts may read.
	ExposedHeaders []string

	// AllowCredentials indicates whether the request can include credentials.
	AllowCredentials bool

	// MaxAge is how long, in seconds, a preflight result may be cached.
	// 0 leaves the header out.
	MaxAge int
}

// DefaultCORSConfig is a permissive configuration suitable for development.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
	}
}

// FrontCORSConfig only admits the store front at frontURL, with
// credentials. The request id header is exposed to it.
func FrontCORSConfig(frontURL string) *CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{strings.TrimRight(frontURL, "/")}
	cfg.ExposedHeaders = []string{RequestIDHeader}
	cfg.AllowCredentials = true
	cfg.MaxAge = 600
	return cfg
}

// CORS returns an HTTP middleware that answers preflight requests and sets
// the CORS headers of allowed origins. A nil cfg uses DefaultCORSConfig.
func CORS(cfg *CORSConfig) func(http.Handler) http.Handler {
	defaults := DefaultCORSConfig()
	if cfg == nil {
		cfg = defaults
	}
	origins := orDefault(cfg.AllowedOrigins, defaults.AllowedOrigins)
	wildcard := slices.Contains(origins, "*")
	methods := strings.Join(orDefault(cfg.AllowedMethods, defaults.AllowedMethods), ", ")
	headers := strings.Join(orDefault(cfg.AllowedHeaders, defaults.AllowedHeaders), ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case origin != "" && !wildcard && slices.Contains(origins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			case wildcard && origin != "" && cfg.AllowCredentials:
				// "*" may not be combined with credentials.
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			default:
				origin = ""
			}
			if origin != "" && cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
