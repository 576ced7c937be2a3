// Package config loads the server configuration from the environment and
// builds the extraction engines it describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/iklobato/pdftable/ingest"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Debug appends failure causes to envelope messages.
	Debug bool `env:"DEBUG" envDefault:"false"`

	UploadDir      string `env:"UPLOAD_DIR"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES"`

	ExtractTimeout  time.Duration `env:"EXTRACT_TIMEOUT" envDefault:"2m"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"3m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	JavaBin   string `env:"JAVA_BIN" envDefault:"java"`
	TabulaJar string `env:"TABULA_JAR"`

	// EnginesFile is an optional YAML engine definition replacing the
	// built-in engine set.
	EnginesFile string `env:"ENGINES_FILE"`

	// Telemetry enables OTLP trace export.
	Telemetry bool `env:"TELEMETRY" envDefault:"false"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return loadFrom(env.ToMap(os.Environ()))
}

func loadFrom(environ map[string]string) (*Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = filepath.Join(os.TempDir(), "pdftable-uploads")
	}

	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = ingest.DefaultMaxBytes
	}

	if cfg.ExtractTimeout < 0 || cfg.RequestTimeout < 0 || cfg.ShutdownTimeout < 0 {
		return nil, errors.New("timeouts must not be negative")
	}

	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
