// Package daemon wires the watcher, record parser, deduplicator, exporter and
// cursor into the long running export loop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/arenadeck/arenadeck-go/internal/cursor"
	"github.com/arenadeck/arenadeck-go/internal/export"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// DefaultRetryInterval is how often exports that failed are retried.
const DefaultRetryInterval = 30 * time.Second

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("daemon: Run already called")

// CursorStore persists the processed position.
type CursorStore interface {
	Load() cursor.Cursor
	Save(cursor.Cursor) error
}

// Deduplicator decides which decks still need exporting.
type Deduplicator interface {
	ShouldExport(d *deck.Deck) bool
	MarkExported(ctx context.Context, d *deck.Deck, artifacts []string)
}

// Exporter writes deck files.
type Exporter interface {
	Formats() []export.Format
	ExportFormats(ctx context.Context, d *deck.Deck, formats []export.Format) ([]export.Artifact, error)
}

// Config holds the behavioral switches of a Daemon.
type Config struct {
	// Backfill parses the existing log content when there is no usable
	// cursor. Without it the daemon starts at the end of the file.
	Backfill bool
	// AutoExport writes new decks. When false decks are only logged.
	AutoExport bool
	// RetryInterval paces retries of failed exports. Defaults to
	// DefaultRetryInterval.
	RetryInterval time.Duration
}

// Deps are the collaborators of a Daemon.
type Deps struct {
	Cursor   CursorStore
	Dedup    Deduplicator
	Exporter Exporter
	// Parser decodes blocks. Nil means arenadeck.DefaultParser.
	Parser arenadeck.Parser
	Logger *slog.Logger
	RunID  string
	// WatcherOptions configure the log watcher (file, mode, interval).
	// Backfill, resume and logger are set by the daemon.
	WatcherOptions []arenadeck.WatchOption
}

// Stats counts what a run did.
type Stats struct {
	Events     int
	Resets     int
	DecksSeen  int
	Exported   int
	Duplicates int
	Failed     int
	Pending    int
}

// pendingExport is a deck whose export did not complete.
type pendingExport struct {
	deck      deck.Deck
	formats   []export.Format
	artifacts []string
	gen       int
	attempts  int
}

// position is the end of the last consumed event.
type position struct {
	path     string
	end      int64
	identity arenadeck.FileIdentity
	gen      int
}

// Daemon processes one log file until its context is cancelled.
type Daemon struct {
	cfg      Config
	cursor   CursorStore
	dedup    Deduplicator
	exporter Exporter
	records  *arenadeck.RecordParser
	log      *slog.Logger
	watchOps []arenadeck.WatchOption

	mu    sync.Mutex
	state State
	stats Stats
	ran   bool

	// Owned by Run. committed is the position the daemon stands behind;
	// dirty is set until it has been saved.
	committed cursor.Cursor
	dirty     bool
	pos       position
	gen       int
	first     bool
	pending   map[string]*pendingExport
}

// New validates deps and returns a Daemon in StateIdle.
func New(cfg Config, deps Deps) (*Daemon, error) {
	if deps.Cursor == nil {
		return nil, errors.New("daemon: cursor store is required")
	}
	if deps.Dedup == nil {
		return nil, errors.New("daemon: deduplicator is required")
	}
	if cfg.AutoExport && deps.Exporter == nil {
		return nil, errors.New("daemon: exporter is required when auto export is enabled")
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.RunID != "" {
		log = log.With("run_id", deps.RunID)
	}

	return &Daemon{
		cfg:      cfg,
		cursor:   deps.Cursor,
		dedup:    deps.Dedup,
		exporter: deps.Exporter,
		records:  arenadeck.NewRecordParser(deps.Parser, log),
		log:      log,
		watchOps: deps.WatcherOptions,
		pending:  make(map[string]*pendingExport),
	}, nil
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stats returns a snapshot of the run counters.
func (d *Daemon) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Daemon) setState(s State) {
	d.mu.Lock()
	from := d.state
	if !CanTransition(from, s) {
		d.mu.Unlock()
		panic(fmt.Sprintf("daemon: invalid state transition %s -> %s", from, s))
	}
	d.state = s
	d.mu.Unlock()
	d.log.Info("state changed", "from", from, "state", s)
}

func (d *Daemon) count(f func(*Stats)) {
	d.mu.Lock()
	f(&d.stats)
	d.stats.Pending = len(d.pending)
	d.mu.Unlock()
}

// Run watches the log until ctx is cancelled, then drains and returns nil.
// It returns an error if the watcher cannot be created or stops on its own.
// Run may be called only once.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.ran {
		d.mu.Unlock()
		return ErrAlreadyRun
	}
	d.ran = true
	d.mu.Unlock()

	d.committed = d.cursor.Load()
	d.first = true

	opts := append([]arenadeck.WatchOption{}, d.watchOps...)
	opts = append(opts,
		arenadeck.WithBackfill(d.cfg.Backfill),
		arenadeck.WithResume(d.committed.ResumePoint()),
		arenadeck.WithLogger(d.log),
	)
	w, err := arenadeck.NewWatcherWithOptions(opts...)
	if err != nil {
		d.setState(StateStopped)
		return fmt.Errorf("create watcher: %w", err)
	}

	d.setState(StateBackfilling)
	d.log.Info("processing log", "path", w.Path(), "offset", d.committed.Offset, "backfill", d.cfg.Backfill)

	events, errs, err := w.Watch(ctx)
	if err != nil {
		d.setState(StateDraining)
		d.setState(StateStopped)
		return fmt.Errorf("start watcher: %w", err)
	}

	// Events are handled to completion even while shutting down.
	work := context.WithoutCancel(ctx)
	retry := time.NewTicker(d.cfg.RetryInterval)
	defer retry.Stop()

	var runErr, lastErr error
loop:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					runErr = fmt.Errorf("watcher stopped: %w", errors.Join(arenadeck.ErrWatcherClosed, lastErr))
				}
				break loop
			}
			d.handle(work, ev)
			if ev.CaughtUp && d.State() == StateBackfilling {
				d.setState(StateWatching)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			lastErr = err
			d.log.Warn("watch error", "err", err)
		case <-retry.C:
			if len(d.pending) > 0 {
				d.retryPending(work)
			}
			d.advance()
		case <-ctx.Done():
			break loop
		}
	}

	d.setState(StateDraining)
	if err := w.Close(); err != nil {
		d.log.Warn("closing watcher", "err", err)
	}
	d.advance()
	st := d.Stats()
	d.log.Info("stopped", "events", st.Events, "decks", st.DecksSeen, "exported", st.Exported,
		"duplicates", st.Duplicates, "pending", st.Pending, "offset", d.committed.Offset)
	d.setState(StateStopped)
	return runErr
}

func (d *Daemon) handle(ctx context.Context, ev arenadeck.Event) {
	d.count(func(s *Stats) { s.Events++ })

	if d.first {
		d.first = false
		if ev.Kind == arenadeck.EventGrowth && ev.Offset != d.committed.Offset {
			// The watcher did not resume from the cursor, so it no longer
			// bounds this file.
			d.committed = cursor.Cursor{Path: ev.Path, Offset: ev.Offset, Identity: ev.Identity}
			d.dirty = true
		}
	}

	switch ev.Kind {
	case arenadeck.EventReset:
		d.log.Info("log file reset", "path", ev.Path)
		d.records.Reset()
		d.gen++
		d.pos = position{path: ev.Path, identity: ev.Identity, gen: d.gen}
		d.committed = cursor.Cursor{Path: ev.Path, Identity: ev.Identity}
		d.dirty = true
		d.count(func(s *Stats) { s.Resets++ })
		d.flush()
		return

	case arenadeck.EventGrowth:
		if len(ev.Data) > 0 {
			// Feed fails only once ctx is done, and ctx is detached from
			// cancellation. Malformed blocks are logged by the parser.
			res, err := d.records.Feed(ctx, ev.Offset, ev.Data)
			if err != nil {
				d.log.Warn("feed interrupted", "offset", ev.Offset, "err", err)
			}
			for i := range res.Decks {
				d.process(ctx, &res.Decks[i])
			}
		}
		d.pos = position{path: ev.Path, end: ev.End, identity: ev.Identity, gen: d.gen}
		d.advance()
	}
}

func (d *Daemon) process(ctx context.Context, dk *deck.Deck) {
	d.count(func(s *Stats) { s.DecksSeen++ })
	log := d.log.With("deck_id", dk.ID, "deck_name", dk.Name, "offset", dk.Offset)

	if !d.cfg.AutoExport {
		log.Info("deck found", "format", dk.Format, "cards", dk.CardCount())
		return
	}
	if !d.dedup.ShouldExport(dk) {
		log.Debug("deck already exported")
		d.count(func(s *Stats) { s.Duplicates++ })
		return
	}

	fp := dk.Fingerprint()
	p, ok := d.pending[fp]
	if !ok {
		p = &pendingExport{deck: *dk, formats: d.exporter.Formats()}
	}
	p.deck.Offset = dk.Offset
	p.gen = d.gen
	d.attempt(ctx, fp, p)
}

// attempt exports the formats p still lacks. On full success the deck is
// marked exported; otherwise it stays pending with the failed formats.
func (d *Daemon) attempt(ctx context.Context, fp string, p *pendingExport) {
	log := d.log.With("deck_id", p.deck.ID, "deck_name", p.deck.Name, "fingerprint", fp)

	arts, err := d.exporter.ExportFormats(ctx, &p.deck, p.formats)
	for _, a := range arts {
		p.artifacts = append(p.artifacts, a.Path)
	}
	if err == nil {
		delete(d.pending, fp)
		d.dedup.MarkExported(ctx, &p.deck, p.artifacts)
		d.count(func(s *Stats) { s.Exported++ })
		log.Info("deck exported", "files", p.artifacts)
		return
	}

	var pe *export.PartialError
	if errors.As(err, &pe) {
		p.formats = pe.FailedFormats()
	}
	p.attempts++
	d.pending[fp] = p
	d.count(func(s *Stats) { s.Failed++ })
	log.Warn("deck export incomplete, will retry", "attempt", p.attempts, "formats", p.formats, "err", err)
}

func (d *Daemon) retryPending(ctx context.Context) {
	fps := make([]string, 0, len(d.pending))
	for fp := range d.pending {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	for _, fp := range fps {
		d.attempt(ctx, fp, d.pending[fp])
	}
}

// advance moves the cursor to the end of the last event, held back at the
// earliest block that is still buffered or whose deck is not fully exported,
// so that a restart reads those again. Within one file generation the cursor
// never moves backwards. A cursor that could not be saved earlier is saved
// again.
func (d *Daemon) advance() {
	if d.pos.path == "" {
		d.flush()
		return
	}
	target := d.pos.end
	if off, ok := d.records.Pending(); ok && off < target {
		target = off
	}
	for _, p := range d.pending {
		if p.gen == d.pos.gen && p.deck.Offset < target {
			target = p.deck.Offset
		}
	}
	if target < d.committed.Offset {
		target = d.committed.Offset
	}

	next := cursor.Cursor{Path: d.pos.path, Offset: target, Identity: d.pos.identity}
	if next.Path != d.committed.Path || next.Offset != d.committed.Offset || next.Identity != d.committed.Identity {
		d.committed = next
		d.dirty = true
	}
	d.flush()
}

// flush saves the committed cursor if it changed since the last successful
// save. A failure leaves it dirty for the next attempt.
func (d *Daemon) flush() {
	if !d.dirty {
		return
	}
	c := d.committed
	if err := d.cursor.Save(c); err != nil {
		d.log.Warn("could not save cursor, will retry", "path", c.Path, "offset", c.Offset, "err", err)
		return
	}
	d.dirty = false
}
