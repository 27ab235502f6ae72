package arenadeck

import (
	"errors"
	"fmt"

	"github.com/arenadeck/arenadeck-go/internal/logfinder"
)

// Sentinel errors.
var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrAlreadyWatching is returned when Watch is called twice on one Watcher.
	ErrAlreadyWatching = errors.New("watch already started")

	// ErrLogDirNotFound means the directory that should hold Player.log does not exist.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrLogFileNotFound means no log file path could be resolved.
	ErrLogFileNotFound = logfinder.ErrLogFileNotFound
)

// WatchOp names the watcher step that failed.
type WatchOp string

const (
	WatchOpStrategy WatchOp = "strategy"
	WatchOpStat     WatchOp = "stat"
	WatchOpRead     WatchOp = "read"
)

// WatchError is a recoverable watcher failure. The watcher keeps running and
// retries with backoff after reporting it.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }

// ParseError reports a block that could not be turned into decks. Offset is
// the byte offset of the block's opening brace in the log file.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse block at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
