// Package config loads settings from the environment, optionally seeded by a
// .env file. Real environment variables take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bodrovis/json-upload-guard/internal/logging"
)

// DefaultEnvFile is read when Load is called without explicit files.
const DefaultEnvFile = ".env"

type Config struct {
	Logging LoggingConfig
	Upload  UploadConfig
}

type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string
	// Format is the log format: text or json (default: text)
	Format string
}

type UploadConfig struct {
	// Locale selects the message catalog (default: en)
	Locale string
	// BaseDir resolves relative file paths (default: .)
	BaseDir string
	// ReadChunk is the number of bytes read between progress updates (default: 32768)
	ReadChunk int
}

// Load reads configuration from the environment and the given .env files.
// Without files, DefaultEnvFile is used when it exists.
func Load(envFiles ...string) (*Config, error) {
	fileVals, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	}

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  getString(lookup, "LOG_LEVEL", "info"),
			Format: getString(lookup, "LOG_FORMAT", "text"),
		},
		Upload: UploadConfig{
			Locale:  getString(lookup, "UPLOAD_LOCALE", "en"),
			BaseDir: getString(lookup, "UPLOAD_BASE_DIR", "."),
		},
	}

	chunk, err := getInt(lookup, "UPLOAD_READ_CHUNK", 32*1024)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg.Upload.ReadChunk = chunk

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := logging.Check(c.Logging.Level, c.Logging.Format); err != nil {
		return err
	}
	if c.Upload.ReadChunk <= 0 {
		return fmt.Errorf("UPLOAD_READ_CHUNK must be positive, got %d", c.Upload.ReadChunk)
	}
	if strings.TrimSpace(c.Upload.BaseDir) == "" {
		return errors.New("UPLOAD_BASE_DIR must not be blank")
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		vals, err := godotenv.Read(DefaultEnvFile)
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return vals, err
	}
	return godotenv.Read(files...)
}

func getString(lookup func(string) (string, bool), key, fallback string) string {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

func getInt(lookup func(string) (string, bool), key string, fallback int) (int, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
