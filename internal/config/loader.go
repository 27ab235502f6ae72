package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arenadeck/arenadeck-go/internal/safefile"
)

// MaxConfigFileSize bounds the config file read (1MB).
const MaxConfigFileSize = 1 * 1024 * 1024

// EnvConfig names the environment variable consulted by Find.
const EnvConfig = "ARENADECK_CONFIG"

// SearchPaths are tried in order, relative to the working directory, when
// neither an explicit path nor EnvConfig is given.
var SearchPaths = []string{
	"config/daemon.yaml",
	"config/daemon.yml",
	"daemon.yaml",
	"daemon.yml",
}

// Load reads, decodes and validates the config file at path. Keys missing
// from the file keep their Default values.
func Load(path string) (*Config, error) {
	f, info, err := safefile.OpenRegular(path)
	if errors.Is(err, safefile.ErrNotRegularFile) {
		return nil, fmt.Errorf("config file %s must be a regular file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if info.Size() > MaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileSize)
	}
	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadBytes decodes and validates a config document. Unknown keys are an
// error. An empty document yields the defaults.
func LoadBytes(data []byte) (*Config, error) {
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("config too large: %d bytes (max %d)", len(data), MaxConfigFileSize)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the config file to use: explicit if set, then $ARENADECK_CONFIG,
// then the first of SearchPaths that exists. An empty result means no file
// was found and the defaults apply.
func Find(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, nil
	}
	for _, p := range SearchPaths {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
	}
	return "", nil
}

// Resolve finds and loads the config. It returns the path used, or "" when
// the defaults were used.
func Resolve(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks every field. The first problem found is returned as a
// *ValidationError.
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", c.Version, SupportedVersion),
		}
	}
	if strings.TrimSpace(c.ExportDirectory) == "" {
		return &ValidationError{Field: "export_directory", Message: "must not be empty"}
	}
	if strings.TrimSpace(c.StateDirectory) == "" {
		return &ValidationError{Field: "state_directory", Message: "must not be empty"}
	}
	if len(c.Formats()) == 0 {
		return &ValidationError{Field: "export_format", Message: "at least one format must be enabled"}
	}
	if _, err := c.WatchMode(); err != nil {
		return &ValidationError{Field: "monitor.mode", Message: err.Error()}
	}
	if c.Monitor.PollInterval <= 0 {
		return &ValidationError{Field: "monitor.poll_interval", Message: "must be positive"}
	}
	if c.Monitor.MaxChunkBytes <= 0 {
		return &ValidationError{Field: "monitor.max_chunk_bytes", Message: "must be positive"}
	}
	if _, err := c.LogLevel(); err != nil {
		return &ValidationError{Field: "logging.level", Message: err.Error()}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return &ValidationError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q (want text or json)", c.Logging.Format)}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Field: "logging.max_size_mb", Message: "must not be negative"}
	}
	if c.Logging.BackupCount < 0 {
		return &ValidationError{Field: "logging.backup_count", Message: "must not be negative"}
	}
	if !c.Logging.Console && c.Logging.File == "" {
		return &ValidationError{Field: "logging", Message: "console is disabled and no file is set"}
	}
	if c.DeckExport.TimestampFormat == "" {
		return &ValidationError{Field: "deck_export.timestamp_format", Message: "must not be empty"}
	}
	layout, err := c.TimestampLayout()
	if err != nil {
		return &ValidationError{Field: "deck_export.timestamp_format", Message: err.Error()}
	}
	sample := time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC).Format(layout)
	if strings.ContainsAny(sample, `/\`) {
		return &ValidationError{Field: "deck_export.timestamp_format", Message: "must not produce path separators"}
	}
	for i, p := range c.Parser.ShapeFiles {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Field: fmt.Sprintf("parser.shape_files[%d]", i), Message: "must not be empty"}
		}
	}
	return nil
}
