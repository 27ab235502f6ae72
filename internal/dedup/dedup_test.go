package dedup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenadeck/arenadeck-go/internal/store"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

func testDeck(id string, qty int) *deck.Deck {
	return &deck.Deck{
		ID:       id,
		Name:     "Mono Green Ramp",
		Format:   "Standard",
		MainDeck: []deck.Card{{CardID: 70001, Quantity: qty}},
	}
}

type fakeHistory struct {
	preload  []string
	loadErr  error
	writeErr error
	recorded []store.Export
}

func (f *fakeHistory) Fingerprints(context.Context) ([]string, error) {
	return f.preload, f.loadErr
}

func (f *fakeHistory) Record(_ context.Context, e store.Export) error {
	f.recorded = append(f.recorded, e)
	return f.writeErr
}

func TestDeduplicator_ExportOncePerContent(t *testing.T) {
	ctx := context.Background()
	d := New(ctx, nil, nil)

	first := testDeck("abc123", 4)
	assert.True(t, d.ShouldExport(first))
	assert.True(t, d.ShouldExport(first), "ShouldExport must not mark")

	d.MarkExported(ctx, first, nil)
	assert.False(t, d.ShouldExport(first))
	assert.False(t, d.ShouldExport(testDeck("abc123", 4)))

	changed := testDeck("abc123", 3)
	assert.True(t, d.ShouldExport(changed))

	renamed := testDeck("abc123", 4)
	renamed.Name = "Other"
	assert.False(t, d.ShouldExport(renamed), "metadata does not change content")

	assert.Equal(t, 1, d.Len())
}

func TestDeduplicator_PreloadsHistory(t *testing.T) {
	dk := testDeck("abc123", 4)
	h := &fakeHistory{preload: []string{dk.Fingerprint()}}

	d := New(context.Background(), h, nil)
	assert.False(t, d.ShouldExport(dk))
	assert.Equal(t, 1, d.Len())
}

func TestDeduplicator_HistoryLoadFailure(t *testing.T) {
	h := &fakeHistory{loadErr: errors.New("disk gone")}
	d := New(context.Background(), h, nil)
	assert.Equal(t, 0, d.Len())
	assert.True(t, d.ShouldExport(testDeck("a", 1)))
}

func TestDeduplicator_RecordsHistory(t *testing.T) {
	at := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	h := &fakeHistory{}
	d := New(context.Background(), h, nil, WithRunID("run-7"), WithClock(func() time.Time { return at }))

	dk := testDeck("abc123", 4)
	d.MarkExported(context.Background(), dk, []string{"x.json"})

	require.Len(t, h.recorded, 1)
	got := h.recorded[0]
	assert.Equal(t, dk.Fingerprint(), got.Fingerprint)
	assert.Equal(t, "abc123", got.DeckID)
	assert.Equal(t, 4, got.CardCount)
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, at, got.ExportedAt)
	assert.Equal(t, []string{"x.json"}, got.Artifacts)
}

func TestDeduplicator_HistoryWriteFailureKeepsMemory(t *testing.T) {
	h := &fakeHistory{writeErr: errors.New("read-only")}
	d := New(context.Background(), h, nil)

	dk := testDeck("abc123", 4)
	d.MarkExported(context.Background(), dk, nil)
	assert.False(t, d.ShouldExport(dk))
}

func TestDeduplicator_SQLiteAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), store.FileName)
	dk := testDeck("abc123", 4)

	s1, err := store.Open(path)
	require.NoError(t, err)
	New(ctx, s1, nil).MarkExported(ctx, dk, []string{"a.json"})
	require.NoError(t, s1.Close())

	s2, err := store.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	d := New(ctx, s2, nil)
	assert.False(t, d.ShouldExport(dk))
	assert.True(t, d.ShouldExport(testDeck("abc123", 2)))
}
