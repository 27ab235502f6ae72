package arenadeck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/arenadeck/arenadeck-go/internal/logfinder"
	"github.com/arenadeck/arenadeck-go/internal/safefile"
)

// watcherErrBuffer is the buffer size for the error channel.
const watcherErrBuffer = 16

// missingWarnEvery limits how often a missing log file is reported.
const missingWarnEvery = time.Minute

// Watcher tails the MTG Arena log file and reports growth and resets.
type Watcher struct {
	cfg  watchConfig
	path string
	log  *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewWatcherWithOptions creates a watcher using functional options.
// It validates the options and resolves the log file path but does not start
// any goroutines. A missing log directory is an error; a missing file is not,
// the watcher waits for it to appear.
func NewWatcherWithOptions(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	path, err := logfinder.FindLogFile(cfg.logFile)
	if err != nil {
		return nil, fmt.Errorf("finding log file: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Watcher{
		cfg:  *cfg,
		path: path,
		log:  log,
	}, nil
}

// WatchWithOptions creates a watcher and starts watching. The watcher stops
// when ctx is cancelled; use NewWatcherWithOptions for synchronous Close.
func WatchWithOptions(ctx context.Context, opts ...WatchOption) (<-chan Event, <-chan error, error) {
	w, err := NewWatcherWithOptions(opts...)
	if err != nil {
		return nil, nil, err
	}
	return w.Watch(ctx)
}

// Path returns the resolved log file path.
func (w *Watcher) Path() string { return w.path }

// Watch starts watching and returns the event and error channels.
// Both channels are closed when ctx is cancelled or Close is called.
// The event channel is unbuffered, so the watcher never reads ahead of the
// consumer by more than one event. Errors on the error channel are
// recoverable; the watcher retries on its own.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	eventCh := make(chan Event)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, eventCh, errCh)

	return eventCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times. Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

// watchState is the position the consumer has accepted. It only changes
// after an event was delivered.
type watchState struct {
	started  bool
	offset   int64
	identity FileIdentity
	target   int64
	caughtUp bool
}

func (s *watchState) commit(ev Event) {
	s.identity = ev.Identity
	switch ev.Kind {
	case EventReset:
		s.offset = 0
	case EventGrowth:
		s.offset = ev.End
	}
	if ev.CaughtUp {
		s.caughtUp = true
	}
}

func (w *Watcher) run(ctx context.Context, eventCh chan<- Event, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(eventCh)
	defer close(errCh)

	strategy, err := newStrategy(w.cfg.mode, w.path, w.cfg.pollInterval, w.log)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpStrategy, Path: w.path, Err: err})
		return
	}
	defer strategy.Close()
	w.log.Debug("watching log file", "path", w.path, "mode", w.cfg.mode)

	missing := rate.NewLimiter(rate.Every(missingWarnEvery), 1)
	st := &watchState{}
	var backoff time.Duration

	for {
		ev, ok, err := w.next(st, missing)
		if err != nil {
			sendError(ctx, errCh, err)
			backoff = nextBackoff(backoff, w.cfg.retryBackoff, w.cfg.pollInterval)
			if !sleep(ctx, backoff) {
				return
			}
			continue
		}
		backoff = 0

		if ok {
			select {
			case eventCh <- ev:
				st.commit(ev)
			case <-ctx.Done():
				return
			}
			continue
		}

		if err := strategy.Wait(ctx); err != nil {
			return
		}
	}
}

// next inspects the file once and returns at most one event.
func (w *Watcher) next(st *watchState, missing *rate.Limiter) (Event, bool, error) {
	f, fi, err := safefile.OpenRegular(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		if missing.Allow() {
			w.log.Warn("log file not found, waiting for it to appear", "path", w.path)
		}
		if !st.started {
			// Whatever appears later is new content.
			st.started = true
			return Event{Kind: EventGrowth, Path: w.path, CaughtUp: true}, true, nil
		}
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, &WatchError{Op: WatchOpStat, Path: w.path, Err: err}
	}
	defer f.Close()

	size := fi.Size()
	cur, head, err := identityOf(f, fi)
	if err != nil {
		return Event{}, false, &WatchError{Op: WatchOpRead, Path: w.path, Err: err}
	}

	if !st.started {
		st.started = true
		offset, stale := w.startPosition(size, cur, head)
		st.offset = offset
		st.identity = cur
		st.target = size
		w.log.Debug("start position", "path", w.path, "offset", st.offset, "size", size, "stale_resume", stale)
		if stale {
			// The persisted position belongs to an earlier generation of the
			// file. Everything in the current one is new.
			return Event{Kind: EventReset, Path: w.path, Identity: cur, CaughtUp: size == 0}, true, nil
		}
		if st.offset >= size {
			return Event{Kind: EventGrowth, Path: w.path, Offset: st.offset, End: st.offset, Identity: cur, CaughtUp: true}, true, nil
		}
	}

	if st.identity.IsZero() && st.offset == 0 {
		st.identity = cur
	}

	if !st.identity.matches(cur.Key, head) || size < st.offset {
		w.log.Debug("log file reset", "path", w.path, "offset", st.offset, "size", size)
		return Event{Kind: EventReset, Path: w.path, Identity: cur}, true, nil
	}

	if size == st.offset {
		return Event{}, false, nil
	}

	n := size - st.offset
	if n > int64(w.cfg.maxChunkBytes) {
		n = int64(w.cfg.maxChunkBytes)
	}
	data := make([]byte, n)
	read, err := f.ReadAt(data, st.offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return Event{}, false, &WatchError{Op: WatchOpRead, Path: w.path, Err: err}
	}
	if read == 0 {
		return Event{}, false, nil
	}

	ev := Event{
		Kind:     EventGrowth,
		Path:     w.path,
		Offset:   st.offset,
		End:      st.offset + int64(read),
		Data:     data[:read],
		Identity: cur,
	}
	if !st.caughtUp && ev.End >= st.target {
		ev.CaughtUp = true
	}
	return ev, true, nil
}

// startPosition picks the first offset. A resume point that still refers to
// this file generation wins. A resume point that does not is stale: the file
// was replaced or shrank, so reading starts at 0 regardless of backfill.
// Without a resume point, backfill starts at 0 and otherwise at end of file.
func (w *Watcher) startPosition(size int64, cur FileIdentity, head []byte) (offset int64, stale bool) {
	if r := w.cfg.resume; r != nil {
		resumable := (r.Path == "" || r.Path == w.path) &&
			!r.Identity.IsZero() &&
			r.Identity.matches(cur.Key, head) &&
			size >= r.Offset
		if resumable {
			return r.Offset, false
		}
		w.log.Debug("resume point not usable", "path", w.path, "offset", r.Offset, "size", size)
		return 0, true
	}
	if w.cfg.backfill {
		return 0, false
	}
	return size, false
}

func nextBackoff(cur, first, limit time.Duration) time.Duration {
	if cur <= 0 {
		return first
	}
	cur *= 2
	if cur > limit {
		return limit
	}
	return cur
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// sendError sends an error to the error channel.
// Errors are only dropped if the buffer is full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
