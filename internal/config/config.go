// Package config loads the daemon configuration file.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arenadeck/arenadeck-go/internal/cursor"
	"github.com/arenadeck/arenadeck-go/internal/export"
	"github.com/arenadeck/arenadeck-go/internal/lockfile"
	"github.com/arenadeck/arenadeck-go/internal/store"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
)

// SupportedVersion is the only accepted config file version.
const SupportedVersion = 1

// Config is the daemon configuration.
type Config struct {
	Version         int          `yaml:"version"`
	LogFilePath     string       `yaml:"log_file_path"`
	ExportDirectory string       `yaml:"export_directory"`
	StateDirectory  string       `yaml:"state_directory"`
	ExportFormat    ExportFormat `yaml:"export_format"`
	Monitor         Monitor      `yaml:"monitor"`
	Logging         Logging      `yaml:"logging"`
	DeckExport      DeckExport   `yaml:"deck_export"`
	Parser          Parser       `yaml:"parser"`
}

// ExportFormat toggles the output formats.
type ExportFormat struct {
	JSON bool `yaml:"json"`
	Text bool `yaml:"text"`
	MTGA bool `yaml:"mtga"`
}

// Monitor configures the log watcher.
type Monitor struct {
	Mode         string   `yaml:"mode"`
	PollInterval Duration `yaml:"poll_interval"`
	// WatchEnabled false forces polling. Nil leaves Mode alone.
	WatchEnabled   *bool `yaml:"watch_enabled,omitempty"`
	ParseOnStartup bool  `yaml:"parse_on_startup"`
	MaxChunkBytes  int   `yaml:"max_chunk_bytes"`
}

// Logging configures the daemon's own log output.
type Logging struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Console     bool   `yaml:"console"`
	Format      string `yaml:"format"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	BackupCount int    `yaml:"backup_count"`
}

// DeckExport configures what happens to parsed decks.
type DeckExport struct {
	AutoExport      bool   `yaml:"auto_export"`
	TimestampFormat string `yaml:"timestamp_format"`
	PersistHistory  bool   `yaml:"persist_history"`
}

// Parser lists additional shape files.
type Parser struct {
	ShapeFiles []string `yaml:"shape_files"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Version:         SupportedVersion,
		ExportDirectory: "./exports",
		StateDirectory:  "./state",
		ExportFormat:    ExportFormat{JSON: true, Text: true, MTGA: true},
		Monitor: Monitor{
			Mode:           arenadeck.ModeAuto.String(),
			PollInterval:   Duration(arenadeck.DefaultPollInterval),
			ParseOnStartup: true,
			MaxChunkBytes:  arenadeck.DefaultMaxChunkBytes,
		},
		Logging: Logging{
			Level:       "info",
			Console:     true,
			Format:      "text",
			MaxSizeMB:   10,
			BackupCount: 5,
		},
		DeckExport: DeckExport{
			AutoExport:      true,
			TimestampFormat: export.DefaultTimestampLayout,
			PersistHistory:  true,
		},
	}
}

// Formats returns the enabled export formats in export order.
func (c *Config) Formats() []export.Format {
	var out []export.Format
	if c.ExportFormat.JSON {
		out = append(out, export.FormatJSON)
	}
	if c.ExportFormat.Text {
		out = append(out, export.FormatText)
	}
	if c.ExportFormat.MTGA {
		out = append(out, export.FormatMTGA)
	}
	return out
}

// SetFormats enables exactly the given formats.
func (c *Config) SetFormats(formats []export.Format) {
	c.ExportFormat = ExportFormat{}
	for _, f := range formats {
		switch f {
		case export.FormatJSON:
			c.ExportFormat.JSON = true
		case export.FormatText:
			c.ExportFormat.Text = true
		case export.FormatMTGA:
			c.ExportFormat.MTGA = true
		}
	}
}

// WatchMode resolves the monitor mode, honoring watch_enabled: false.
func (c *Config) WatchMode() (arenadeck.Mode, error) {
	if c.Monitor.WatchEnabled != nil && !*c.Monitor.WatchEnabled {
		return arenadeck.ModePoll, nil
	}
	return arenadeck.ParseMode(c.Monitor.Mode)
}

// TimestampLayout returns deck_export.timestamp_format as a Go time layout.
func (c *Config) TimestampLayout() (string, error) {
	return GoLayout(c.DeckExport.TimestampFormat)
}

// LogLevel parses logging.level. Python style names are accepted.
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", c.Logging.Level)
}

// CursorPath is the cursor file inside the state directory.
func (c *Config) CursorPath() string {
	return filepath.Join(c.StateDirectory, cursor.FileName)
}

// HistoryPath is the export history database inside the state directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.StateDirectory, store.FileName)
}

// LockPath is the single instance lock inside the state directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDirectory, lockfile.FileName)
}

// Duration is a time.Duration that also decodes from a bare number of
// seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML accepts "2s", "500ms", 2 or 0.5.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	switch n.Tag {
	case "!!int", "!!float":
		secs, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid duration %q", n.Line, n.Value)
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", n.Line, n.Value)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes d in Go duration syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
