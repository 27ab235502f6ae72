package arenadeck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nxadm/tail/watch"
	"gopkg.in/tomb.v1"
)

// Mode selects a change-detection strategy.
type Mode int

const (
	// ModeAuto uses file notifications and falls back to polling when they
	// cannot be set up.
	ModeAuto Mode = iota
	// ModeNotify uses file notifications only.
	ModeNotify
	// ModePoll re-checks the file on a fixed interval.
	ModePoll
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeNotify:
		return "notify"
	case ModePoll:
		return "poll"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "auto", "notify" or "poll".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "notify", "watch":
		return ModeNotify, nil
	case "poll", "polling":
		return ModePoll, nil
	default:
		return ModeAuto, fmt.Errorf("unknown watch mode %q", s)
	}
}

// Strategy blocks until the log file may have changed.
type Strategy interface {
	// Wait returns nil when the file should be re-checked, or ctx.Err().
	// Spurious wakeups are allowed.
	Wait(ctx context.Context) error
	Close() error
}

func newStrategy(mode Mode, path string, interval time.Duration, log *slog.Logger) (Strategy, error) {
	switch mode {
	case ModePoll:
		return newPollStrategy(interval), nil
	case ModeNotify:
		return newNotifyStrategy(path, interval, log)
	default:
		s, err := newNotifyStrategy(path, interval, log)
		if err != nil {
			log.Warn("file notifications unavailable, falling back to polling", "path", path, "err", err)
			return newPollStrategy(interval), nil
		}
		return s, nil
	}
}

type pollStrategy struct {
	ticker *time.Ticker
}

func newPollStrategy(interval time.Duration) *pollStrategy {
	return &pollStrategy{ticker: time.NewTicker(interval)}
}

func (s *pollStrategy) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ticker.C:
		return nil
	}
}

func (s *pollStrategy) Close() error {
	s.ticker.Stop()
	return nil
}

// notifyStrategy waits on nxadm/tail's inotify watcher. The watch ends when
// the file is deleted or renamed; it is re-armed on the next Wait once the
// path exists again, re-checking every interval until then.
type notifyStrategy struct {
	path     string
	interval time.Duration
	log      *slog.Logger

	tomb    *tomb.Tomb
	changes *watch.FileChanges
}

func newNotifyStrategy(path string, interval time.Duration, log *slog.Logger) (*notifyStrategy, error) {
	s := &notifyStrategy{path: path, interval: interval, log: log}
	if err := s.arm(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

func (s *notifyStrategy) arm() error {
	if _, err := os.Stat(s.path); err != nil {
		return err
	}
	t := new(tomb.Tomb)
	changes, err := watch.NewInotifyFileWatcher(s.path).ChangeEvents(t, 0)
	if err != nil {
		t.Kill(nil)
		return err
	}
	s.tomb = t
	s.changes = changes
	s.log.Debug("file notifications armed", "path", s.path)
	return nil
}

func (s *notifyStrategy) disarm() {
	if s.tomb != nil {
		s.tomb.Kill(nil)
	}
	s.tomb = nil
	s.changes = nil
}

func (s *notifyStrategy) Wait(ctx context.Context) error {
	if s.changes == nil {
		if err := s.arm(); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Debug("re-arming file notifications failed", "path", s.path, "err", err)
		}
	}

	if s.changes == nil {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.changes.Modified:
		return nil
	case <-s.changes.Truncated:
		return nil
	case <-s.changes.Deleted:
		s.log.Debug("log file removed or renamed", "path", s.path)
		s.disarm()
		return nil
	}
}

func (s *notifyStrategy) Close() error {
	s.disarm()
	return nil
}
