// Package config defines the per-run processing configuration.
//
// Config is declarative: it describes which transforms are enabled and under
// what limits, not how to perform them. It is immutable once validated; the
// pipeline never mutates it mid-run.
//
// Validation is fail-fast: out-of-range codec levels reject the whole
// configuration before any file is touched, rather than being clamped
// silently at use time.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Gzip and brotli accept a bounded range of levels; anything outside fails
// validation.
const (
	MinGzipLevel     = 0
	MaxGzipLevel     = 9
	MinBrotliQuality = 0
	MaxBrotliQuality = 11
)

// Config holds the immutable settings for one pipeline run.
type Config struct {
	// Enabled turns the whole pipeline on or off. When false every candidate
	// passes through untouched.
	Enabled bool `json:"enabled"`

	// MinifyFiles enables css/js minification.
	MinifyFiles bool `json:"minifyFiles"`

	// GzipCompression and BrotliCompression independently toggle the two
	// codec backends.
	GzipCompression   bool `json:"gzipCompression"`
	BrotliCompression bool `json:"brotliCompression"`

	// MinFileSize is the compression floor in bytes. Content shorter than
	// this is never compressed; tiny payloads commonly grow when compressed.
	MinFileSize int64 `json:"minFileSize"`

	// MaxFileSize is the per-file ceiling in bytes. Larger files are skipped
	// entirely.
	MaxFileSize int64 `json:"maxFileSize"`

	// MaxFilesPerRun bounds how many files one run may process. Once reached,
	// all remaining candidates in the run are skipped.
	MaxFilesPerRun int `json:"maxFilesPerRun"`

	// GzipLevel is the gzip compression level (0-9).
	GzipLevel int `json:"gzipLevel"`

	// BrotliQuality is the brotli quality (0-11).
	BrotliQuality int `json:"brotliQuality"`

	// PreserveComments keeps bang comments (/*! ... */) through minification.
	PreserveComments bool `json:"preserveComments"`

	// SupportedExtensions lists the extensions (without dot, lowercase)
	// eligible for processing.
	SupportedExtensions []string `json:"supportedExtensions"`

	// ExcludePatterns is an ordered list of glob patterns; a candidate
	// matching any of them is never processed. First match wins.
	ExcludePatterns []string `json:"excludePatterns"`

	// Workers caps concurrent file processing. Zero means one worker per CPU.
	Workers int `json:"workers,omitempty"`
}

// Default returns the balanced preset: moderate compression levels that trade
// a little output size for much cheaper runs. This is the shipped default.
func Default() Config {
	return Config{
		Enabled:           true,
		MinifyFiles:       true,
		GzipCompression:   true,
		BrotliCompression: true,
		MinFileSize:       200,
		MaxFileSize:       10 << 20, // 10 MiB
		MaxFilesPerRun:    1000,
		GzipLevel:         6,
		BrotliQuality:     4,
		PreserveComments:  true,
		SupportedExtensions: []string{
			"css", "js", "txt", "xml", "json", "svg", "md", "rst", "html", "htm",
		},
		ExcludePatterns: []string{"*.min.*", "*-min.*"},
	}
}

// MaxCompression returns the aggressive preset: maximal gzip and brotli
// levels. Slower runs, smallest artifacts.
func MaxCompression() Config {
	cfg := Default()
	cfg.GzipLevel = MaxGzipLevel
	cfg.BrotliQuality = MaxBrotliQuality
	return cfg
}

// Validate checks all numeric settings against their valid ranges.
// A Config that fails validation must not be used for a run.
func (c Config) Validate() error {
	if c.GzipLevel < MinGzipLevel || c.GzipLevel > MaxGzipLevel {
		return fmt.Errorf("%w: gzip level %d outside %d-%d",
			ErrInvalidConfig, c.GzipLevel, MinGzipLevel, MaxGzipLevel)
	}
	if c.BrotliQuality < MinBrotliQuality || c.BrotliQuality > MaxBrotliQuality {
		return fmt.Errorf("%w: brotli quality %d outside %d-%d",
			ErrInvalidConfig, c.BrotliQuality, MinBrotliQuality, MaxBrotliQuality)
	}
	if c.MinFileSize < 0 {
		return fmt.Errorf("%w: negative min file size %d", ErrInvalidConfig, c.MinFileSize)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max file size must be positive, got %d", ErrInvalidConfig, c.MaxFileSize)
	}
	if c.MaxFilesPerRun <= 0 {
		return fmt.Errorf("%w: max files per run must be positive, got %d", ErrInvalidConfig, c.MaxFilesPerRun)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Load reads a Config from a JSON file, overlaying the balanced defaults so
// partial files only need to name the settings they change. The result is
// validated before being returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
