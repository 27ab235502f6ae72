package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Export is one row of the export history.
type Export struct {
	Fingerprint string
	DeckID      string
	Name        string
	Format      string
	CardCount   int
	RunID       string
	ExportedAt  time.Time
	Artifacts   []string
}

// Record inserts e. A row with the same fingerprint is left untouched.
func (s *Store) Record(ctx context.Context, e Export) error {
	artifacts := e.Artifacts
	if artifacts == nil {
		artifacts = []string{}
	}
	artifactsJSON, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exported_decks
		(fingerprint, deck_id, name, format, card_count, run_id, exported_at, artifacts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		e.Fingerprint,
		e.DeckID,
		e.Name,
		e.Format,
		e.CardCount,
		e.RunID,
		e.ExportedAt.UnixMilli(),
		string(artifactsJSON),
	)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// Fingerprints returns every recorded fingerprint.
func (s *Store) Fingerprints(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint FROM exported_decks ORDER BY exported_at, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	var fps []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		fps = append(fps, fp)
	}
	return fps, rows.Err()
}

// Has reports whether fp was recorded.
func (s *Store) Has(ctx context.Context, fp string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exported_decks WHERE fingerprint = ?`, fp).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}
	return n > 0, nil
}

// List returns the most recent exports first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Export, error) {
	query := `
		SELECT fingerprint, deck_id, name, format, card_count, run_id, exported_at, artifacts
		FROM exported_decks
		ORDER BY exported_at DESC, fingerprint`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var (
			e             Export
			exportedAt    int64
			artifactsJSON string
		)
		if err := rows.Scan(&e.Fingerprint, &e.DeckID, &e.Name, &e.Format, &e.CardCount,
			&e.RunID, &exportedAt, &artifactsJSON); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.ExportedAt = time.UnixMilli(exportedAt)
		if err := json.Unmarshal([]byte(artifactsJSON), &e.Artifacts); err != nil {
			return nil, fmt.Errorf("decode artifacts for %s: %w", e.Fingerprint, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of recorded exports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exported_decks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count exports: %w", err)
	}
	return n, nil
}
