// Package dedup decides whether a deck state still needs exporting.
package dedup

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/arenadeck/arenadeck-go/internal/store"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// History persists exported fingerprints across runs.
type History interface {
	Fingerprints(ctx context.Context) ([]string, error)
	Record(ctx context.Context, e store.Export) error
}

// NopHistory remembers nothing; deduplication then lasts one process.
type NopHistory struct{}

func (NopHistory) Fingerprints(context.Context) ([]string, error) { return nil, nil }
func (NopHistory) Record(context.Context, store.Export) error     { return nil }

// Deduplicator tracks the fingerprints of exported decks. A deck is exported
// once per distinct content: same id with the same card lists is a
// duplicate, any card change is new.
type Deduplicator struct {
	history History
	log     *slog.Logger
	runID   string
	now     func() time.Time

	mu   sync.Mutex
	seen map[string]struct{}
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithRunID tags recorded history rows.
func WithRunID(id string) Option {
	return func(d *Deduplicator) { d.runID = id }
}

// WithClock overrides the time source for recorded rows.
func WithClock(now func() time.Time) Option {
	return func(d *Deduplicator) {
		if now != nil {
			d.now = now
		}
	}
}

// New returns a Deduplicator preloaded from history. A nil history is
// NopHistory. A history that cannot be read is logged and treated as empty.
func New(ctx context.Context, history History, logger *slog.Logger, opts ...Option) *Deduplicator {
	if history == nil {
		history = NopHistory{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Deduplicator{
		history: history,
		log:     logger,
		now:     time.Now,
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	fps, err := history.Fingerprints(ctx)
	if err != nil {
		d.log.Warn("could not load export history", "err", err)
	}
	for _, fp := range fps {
		d.seen[fp] = struct{}{}
	}
	d.log.Debug("export history loaded", "fingerprints", len(d.seen))
	return d
}

// ShouldExport reports whether d has not been exported yet. It does not
// change any state.
func (x *Deduplicator) ShouldExport(d *deck.Deck) bool {
	fp := d.Fingerprint()
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.seen[fp]
	return !ok
}

// MarkExported records d as exported. Call it only after every artifact was
// written. A history write failure is logged; the in-memory set stays
// authoritative for this run.
func (x *Deduplicator) MarkExported(ctx context.Context, d *deck.Deck, artifacts []string) {
	fp := d.Fingerprint()

	x.mu.Lock()
	x.seen[fp] = struct{}{}
	x.mu.Unlock()

	err := x.history.Record(ctx, store.Export{
		Fingerprint: fp,
		DeckID:      d.ID,
		Name:        d.Name,
		Format:      d.Format,
		CardCount:   d.CardCount(),
		RunID:       x.runID,
		ExportedAt:  x.now(),
		Artifacts:   artifacts,
	})
	if err != nil {
		x.log.Warn("could not record export history", "deck_id", d.ID, "fingerprint", fp, "err", err)
	}
}

// Len returns the number of known fingerprints.
func (x *Deduplicator) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.seen)
}
