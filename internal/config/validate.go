package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/heartmarshall/daijirin-converter/internal/segment"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Convert.validate(); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (c *ConvertConfig) validate() error {
	if _, err := segment.LookupEncoding(c.InputEncoding); err != nil {
		return fmt.Errorf("input_encoding must be one of %s (got %q)", strings.Join(segment.Encodings, ", "), c.InputEncoding)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output_path is required")
	}
	if strings.TrimSpace(c.ErrorLogPath) == "" {
		return fmt.Errorf("error_log_path is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", c.Workers)
	}
	if c.Window < c.Workers {
		return fmt.Errorf("window must be >= workers (got %d < %d)", c.Window, c.Workers)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval must be > 0 (got %v)", c.ProgressInterval)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be > 0 (got %d)", c.MaxConns)
	}
	if c.MinConns < 0 || c.MinConns > c.MaxConns {
		return fmt.Errorf("min_conns must be in [0, max_conns] (got %d)", c.MinConns)
	}
	return nil
}

func (c *LogConfig) validate() error {
	if !slices.Contains(logLevels, strings.ToLower(c.Level)) {
		return fmt.Errorf("level must be one of %s (got %q)", strings.Join(logLevels, ", "), c.Level)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Format)) {
		return fmt.Errorf("format must be one of %s (got %q)", strings.Join(logFormats, ", "), c.Format)
	}
	return nil
}
