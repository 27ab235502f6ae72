package arenadeck

import (
	"fmt"
	"log/slog"
	"time"
)

// Defaults for watcher options.
const (
	DefaultPollInterval  = 2 * time.Second
	DefaultMaxChunkBytes = 4 << 20
	DefaultRetryBackoff  = 100 * time.Millisecond
)

// ResumePoint is a previously persisted read position.
type ResumePoint struct {
	Path     string
	Offset   int64
	Identity FileIdentity
}

// WatchOption configures a Watcher using the functional options pattern.
type WatchOption func(*watchConfig)

type watchConfig struct {
	logFile       string
	mode          Mode
	pollInterval  time.Duration
	backfill      bool
	resume        *ResumePoint
	maxChunkBytes int
	retryBackoff  time.Duration
	logger        *slog.Logger
}

func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		mode:          ModeAuto,
		pollInterval:  DefaultPollInterval,
		maxChunkBytes: DefaultMaxChunkBytes,
		retryBackoff:  DefaultRetryBackoff,
	}
}

func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *watchConfig) validate() error {
	if c.pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.pollInterval)
	}
	if c.maxChunkBytes <= 0 {
		return fmt.Errorf("max chunk bytes must be positive, got %d", c.maxChunkBytes)
	}
	if c.retryBackoff <= 0 {
		return fmt.Errorf("retry backoff must be positive, got %v", c.retryBackoff)
	}
	if c.mode < ModeAuto || c.mode > ModePoll {
		return fmt.Errorf("unknown watch mode %d", c.mode)
	}
	if c.resume != nil && c.resume.Offset < 0 {
		return fmt.Errorf("resume offset must be non-negative, got %d", c.resume.Offset)
	}
	return nil
}

// WithLogFile sets the Player.log path.
// If not set, ARENADECK_LOG_FILE and then the per-OS MTGA locations are used.
func WithLogFile(path string) WatchOption {
	return func(c *watchConfig) {
		c.logFile = path
	}
}

// WithMode selects how the watcher waits for changes. Default: ModeAuto.
func WithMode(m Mode) WatchOption {
	return func(c *watchConfig) {
		c.mode = m
	}
}

// WithPollInterval sets the polling period for ModePoll and the re-check
// period while the log file is missing. Default: 2 seconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithBackfill reads existing content from offset 0 when there is no resume
// point. When false the watcher starts at end of file.
func WithBackfill(backfill bool) WatchOption {
	return func(c *watchConfig) {
		c.backfill = backfill
	}
}

// WithResume continues from a persisted position when it still refers to the
// same file generation. Otherwise the watcher emits EventReset and reads the
// file from offset 0. A nil point clears it.
func WithResume(p *ResumePoint) WatchOption {
	return func(c *watchConfig) {
		if p == nil {
			c.resume = nil
			return
		}
		cp := *p
		c.resume = &cp
	}
}

// WithMaxChunkBytes caps the Data of a single growth event. Larger growth is
// split over consecutive events. Default: 4 MiB.
func WithMaxChunkBytes(n int) WatchOption {
	return func(c *watchConfig) {
		c.maxChunkBytes = n
	}
}

// WithRetryBackoff sets the first delay after a read error. The delay doubles
// up to the poll interval.
func WithRetryBackoff(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.retryBackoff = d
	}
}

// WithLogger sets a logger for watcher diagnostics.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}
