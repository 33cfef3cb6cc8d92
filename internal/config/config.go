// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrMinioCredentialsRequired is returned when MINIO_ENDPOINT is set without keys.
	ErrMinioCredentialsRequired = errors.New("config: MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")
	// ErrMinioBucketRequired is returned when MINIO_ENDPOINT is set without a bucket.
	ErrMinioBucketRequired = errors.New("config: MINIO_BUCKET is required with MINIO_ENDPOINT")
	// ErrNonPositive is returned when a numeric setting that must be positive is not.
	ErrNonPositive = errors.New("config: value must be positive")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port               int      `env:"PORT, default=8080" json:"port"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*" json:"cors_allowed_origins"`
	MaxUploadMB        int      `env:"MAX_UPLOAD_MB, default=256" json:"max_upload_mb"`

	// Storage settings
	TempDir   string `env:"TEMP_DIR, default=/tmp/audiocut" json:"temp_dir"`
	OutputDir string `env:"OUTPUT_DIR, default=/tmp/audiocut/out" json:"output_dir"`

	// Processing settings
	MaxConcurrentSegments int    `env:"MAX_CONCURRENT_SEGMENTS, default=4" json:"max_concurrent_segments"`
	WaveformWidth         int    `env:"WAVEFORM_WIDTH, default=800" json:"waveform_width"`
	FFmpegPath            string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	DecodeSampleRate      int    `env:"DECODE_SAMPLE_RATE, default=44100" json:"decode_sample_rate"`
	DecodeChannels        int    `env:"DECODE_CHANNELS, default=2" json:"decode_channels"`

	// Optional S3 delivery
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Optional MinIO delivery; takes precedence over S3 when set
	MinioEndpoint  string `env:"MINIO_ENDPOINT" json:"minio_endpoint,omitempty"`
	MinioBucket    string `env:"MINIO_BUCKET" json:"minio_bucket,omitempty"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" json:"-"` // Masked in JSON
	MinioSecretKey string `env:"MINIO_SECRET_KEY" json:"-"` // Masked in JSON
	MinioUseSSL    bool   `env:"MINIO_USE_SSL, default=false" json:"minio_use_ssl"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// MinioEnabled returns true if a MinIO endpoint is configured.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	return LoadWith(context.Background(), envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"PORT", c.Port},
		{"MAX_UPLOAD_MB", c.MaxUploadMB},
		{"MAX_CONCURRENT_SEGMENTS", c.MaxConcurrentSegments},
		{"WAVEFORM_WIDTH", c.WaveformWidth},
		{"DECODE_SAMPLE_RATE", c.DecodeSampleRate},
		{"DECODE_CHANNELS", c.DecodeChannels},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s=%d", ErrNonPositive, p.name, p.value)
		}
	}

	if c.MinioEnabled() {
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return ErrMinioCredentialsRequired
		}
		if c.MinioBucket == "" {
			return ErrMinioBucketRequired
		}
	}
	return nil
}

// NewLogger creates a structured logger writing to stdout.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a structured logger writing to w.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, TempDir: %s, OutputDir: %s, MaxConcurrentSegments: %d, WaveformWidth: %d, FFmpegPath: %s, "+
			"S3Bucket: %s, S3Region: %s, S3Endpoint: %s, MinioEndpoint: %s, MinioBucket: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.TempDir,
		c.OutputDir,
		c.MaxConcurrentSegments,
		c.WaveformWidth,
		c.FFmpegPath,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.MinioEndpoint,
		c.MinioBucket,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
