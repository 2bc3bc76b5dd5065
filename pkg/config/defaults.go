package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ccollicutt/errprofile/pkg/parser"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout = 10 * time.Second
	UnlimitedWorkers      = -1
)

// Environment variable names.
const (
	EnvEncoding = "ERRPROFILE_ENCODING"
	EnvWorkers  = "ERRPROFILE_WORKERS"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Encoding:    parser.DefaultEncoding,
		ErrorMarker: parser.DefaultErrorMarker,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if enc := os.Getenv(EnvEncoding); enc != "" {
		c.Encoding = enc
	}

	if w := os.Getenv(EnvWorkers); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("%s: invalid worker count %q", EnvWorkers, w)
		}
		c.Workers = n
	}

	return nil
}
