package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arenadeck/arenadeck-go/internal/config"
	"github.com/arenadeck/arenadeck-go/internal/cursor"
	"github.com/arenadeck/arenadeck-go/internal/store"
)

func TestPrintState_Empty(t *testing.T) {
	cfg := config.Default()
	cfg.StateDirectory = t.TempDir()

	var out bytes.Buffer
	if err := printState(context.Background(), cfg, 10, &out); err != nil {
		t.Fatalf("printState() error = %v", err)
	}
	for _, want := range []string{"Cursor:   none", "History:  none"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrintState_CursorAndHistory(t *testing.T) {
	cfg := config.Default()
	cfg.StateDirectory = t.TempDir()
	ctx := context.Background()

	err := cursor.NewStore(cfg.CursorPath(), nil).Save(cursor.Cursor{Path: "/games/Player.log", Offset: 1234})
	if err != nil {
		t.Fatal(err)
	}

	db, err := store.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"abc123", "def456"} {
		err := db.Record(ctx, store.Export{
			Fingerprint: "fp-" + id,
			DeckID:      id,
			Name:        "Deck " + id,
			Format:      "Standard",
			CardCount:   60,
			ExportedAt:  time.Date(2024, 1, 15, 12, i, 0, 0, time.UTC),
			Artifacts:   []string{filepath.Join("exports", id+".json")},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	var out bytes.Buffer
	if err := printState(ctx, cfg, 1, &out); err != nil {
		t.Fatalf("printState() error = %v", err)
	}
	s := out.String()
	for _, want := range []string{"Offset:   1234", "/games/Player.log", "Exported: 2 deck states", "def456", "Deck def456"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "abc123") {
		t.Errorf("limit 1 should list only the newest export:\n%s", s)
	}
}
