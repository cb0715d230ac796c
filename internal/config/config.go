package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Convert  ConvertConfig  `yaml:"convert"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ConvertConfig holds dump conversion settings.
type ConvertConfig struct {
	InputEncoding    string        `yaml:"input_encoding"    env:"CONVERT_INPUT_ENCODING"    env-default:"utf-8"`
	OutputPath       string        `yaml:"output_path"       env:"CONVERT_OUTPUT_PATH"       env-default:"daijirin_importable.xml"`
	ErrorLogPath     string        `yaml:"error_log_path"    env:"CONVERT_ERROR_LOG_PATH"    env-default:"errors.txt"`
	Workers          int           `yaml:"workers"           env:"CONVERT_WORKERS"           env-default:"1"`
	Window           int           `yaml:"window"            env:"CONVERT_WINDOW"            env-default:"256"`
	ProgressInterval time.Duration `yaml:"progress_interval" env:"CONVERT_PROGRESS_INTERVAL" env-default:"5s"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN disables
// the entry store.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"8"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	SkipMigrations  bool          `yaml:"skip_migrations"    env:"DATABASE_SKIP_MIGRATIONS"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
