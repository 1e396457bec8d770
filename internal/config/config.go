// Package config loads service settings from defaults, an optional TOML
// file, and RECORDS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when Load is given no path and the file exists.
const DefaultPath = "config.toml"

type Config struct {
	DatabaseURL string `toml:"database_url"` // RECORDS_DATABASE_URL (default "sqlite://db/database.db")
	HTTPAddr    string `toml:"http_addr"`    // RECORDS_HTTP_ADDR (default ":8000")
	GRPCAddr    string `toml:"grpc_addr"`    // RECORDS_GRPC_ADDR (optional, empty = no gRPC health)
	NATSURL     string `toml:"nats_url"`     // RECORDS_NATS_URL (optional, empty = events logged only)

	Export ExportConfig `toml:"export"`
	Log    LogConfig    `toml:"log"`
}

type ExportConfig struct {
	Dir      string        `toml:"dir"`      // RECORDS_EXPORT_DIR (default ".")
	CSV      bool          `toml:"csv"`      // RECORDS_EXPORT_CSV (default true)
	JSON     bool          `toml:"json"`     // RECORDS_EXPORT_JSON (default true)
	Async    bool          `toml:"async"`    // RECORDS_EXPORT_ASYNC (default false)
	Interval time.Duration `toml:"interval"` // RECORDS_EXPORT_INTERVAL (default 0 = disabled)

	S3  S3Config  `toml:"s3"`
	Git GitConfig `toml:"git"`
}

type S3Config struct {
	Bucket   string `toml:"bucket"`   // RECORDS_EXPORT_S3_BUCKET (enables S3 when set)
	Endpoint string `toml:"endpoint"` // RECORDS_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	Region   string `toml:"region"`   // RECORDS_EXPORT_S3_REGION (default "us-east-1")
	Prefix   string `toml:"prefix"`   // RECORDS_EXPORT_S3_PREFIX (default "records")
}

type GitConfig struct {
	Repo   string `toml:"repo"`   // RECORDS_EXPORT_GIT_REPO (enables git when set; path to clone)
	Branch string `toml:"branch"` // RECORDS_EXPORT_GIT_BRANCH (default "main")
	Dir    string `toml:"dir"`    // RECORDS_EXPORT_GIT_DIR (default "exports")
}

type LogConfig struct {
	Level     string `toml:"level"`       // RECORDS_LOG_LEVEL (debug, info, warn, error; default info)
	Format    string `toml:"format"`      // RECORDS_LOG_FORMAT (text, json; default text)
	File      string `toml:"file"`        // RECORDS_LOG_FILE (optional, empty = stderr)
	MaxSizeMB int    `toml:"max_size_mb"` // RECORDS_LOG_MAX_SIZE_MB (default 10)
	MaxFiles  int    `toml:"max_files"`   // RECORDS_LOG_MAX_FILES (default 5)
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DatabaseURL: "sqlite://db/database.db",
		HTTPAddr:    ":8000",
		Export: ExportConfig{
			Dir:  ".",
			CSV:  true,
			JSON: true,
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "records",
			},
			Git: GitConfig{
				Branch: "main",
				Dir:    "exports",
			},
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// Load builds a Config. A non-empty path must name a readable TOML file;
// an empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	c := Default()

	file := path
	if file == "" {
		file = DefaultPath
	}
	if _, err := toml.DecodeFile(file, c); err != nil {
		if path != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	envString("RECORDS_DATABASE_URL", &c.DatabaseURL)
	envString("RECORDS_HTTP_ADDR", &c.HTTPAddr)
	envString("RECORDS_GRPC_ADDR", &c.GRPCAddr)
	envString("RECORDS_NATS_URL", &c.NATSURL)

	envString("RECORDS_EXPORT_DIR", &c.Export.Dir)
	envString("RECORDS_EXPORT_S3_BUCKET", &c.Export.S3.Bucket)
	envString("RECORDS_EXPORT_S3_ENDPOINT", &c.Export.S3.Endpoint)
	envString("RECORDS_EXPORT_S3_REGION", &c.Export.S3.Region)
	envString("RECORDS_EXPORT_S3_PREFIX", &c.Export.S3.Prefix)
	envString("RECORDS_EXPORT_GIT_REPO", &c.Export.Git.Repo)
	envString("RECORDS_EXPORT_GIT_BRANCH", &c.Export.Git.Branch)
	envString("RECORDS_EXPORT_GIT_DIR", &c.Export.Git.Dir)

	envString("RECORDS_LOG_LEVEL", &c.Log.Level)
	envString("RECORDS_LOG_FORMAT", &c.Log.Format)
	envString("RECORDS_LOG_FILE", &c.Log.File)

	return errors.Join(
		envBool("RECORDS_EXPORT_CSV", &c.Export.CSV),
		envBool("RECORDS_EXPORT_JSON", &c.Export.JSON),
		envBool("RECORDS_EXPORT_ASYNC", &c.Export.Async),
		envDuration("RECORDS_EXPORT_INTERVAL", &c.Export.Interval),
		envInt("RECORDS_LOG_MAX_SIZE_MB", &c.Log.MaxSizeMB),
		envInt("RECORDS_LOG_MAX_FILES", &c.Log.MaxFiles),
	)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("database_url is required"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, fmt.Errorf("http_addr is required"))
	}
	if c.Export.Interval < 0 {
		errs = append(errs, fmt.Errorf("export.interval must not be negative, got %s", c.Export.Interval))
	}
	if (c.Export.CSV || c.Export.JSON) && c.Export.Dir == "" {
		errs = append(errs, fmt.Errorf("export.dir is required when an export format is enabled"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
