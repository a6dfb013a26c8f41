// Package config loads the environment configuration of a dataobject
// server, by default from etc/env.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "etc/env.yaml"

// FrontURLEnv overrides Front.URL.
const FrontURLEnv = "DATAOBJECT_FRONT_URL"

// Config is the environment configuration.
type Config struct {
	Front  Front  `yaml:"front"`
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
}

// Front describes the store front consuming the API.
type Front struct {
	// URL is sent as Access-Control-Allow-Origin with every result.
	URL string `yaml:"url" validate:"omitempty,url"`
}

type Server struct {
	Addr           string  `yaml:"addr" validate:"required"`
	// MaxRequestBody limits Exec bodies in bytes. Unset means 1MB; 0 means
	// no limit.
	MaxRequestBody *uint64 `yaml:"max_request_body"`
	MaskErrors     bool    `yaml:"mask_errors"`
}

const defaultMaxRequestBody uint64 = 1 << 20

// RequestBodyLimit returns the body size limit, 0 for none.
func (s Server) RequestBodyLimit() uint64 {
	if s.MaxRequestBody == nil {
		return defaultMaxRequestBody
	}
	return *s.MaxRequestBody
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path. A missing file is not an error: the
// defaults are used. The environment is applied last, then the result is
// validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses YAML data, applies defaults and the environment, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	applyDefaults(&cfg)
	if v, ok := os.LookupEnv(FrontURLEnv); ok {
		cfg.Front.URL = v
	}
	cfg.Front.URL = strings.TrimRight(cfg.Front.URL, "/")
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxRequestBody == nil {
		limit := defaultMaxRequestBody
		cfg.Server.MaxRequestBody = &limit
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// SlogLevel returns the configured level.
func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	// Validated values always parse.
	_ = level.UnmarshalText([]byte(l.Level))
	return level
}

// NewLogger builds the server logger.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
