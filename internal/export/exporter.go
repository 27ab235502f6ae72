// Package export writes deck files in json, text and MTG Arena import
// formats.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arenadeck/arenadeck-go/internal/safefile"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/deck"
)

// DefaultTimestampLayout is the file name timestamp layout.
const DefaultTimestampLayout = "20060102_150405"

// maxCollisionSuffix bounds the -N suffix search.
const maxCollisionSuffix = 1000

// Artifact is one written export file.
type Artifact struct {
	Format  Format
	Path    string
	Payload []byte
}

// ConfigError means the exporter cannot work with its options. It is fatal
// at startup.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PartialError reports an export where some formats failed. Written holds
// the artifacts that did reach their final path.
type PartialError struct {
	DeckID   string
	Failures map[Format]error
	Written  []Artifact
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range AllFormats {
		if err, ok := e.Failures[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", f, err))
		}
	}
	return fmt.Sprintf("export deck %s: %d format(s) failed: %s", e.DeckID, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range AllFormats {
		if err, ok := e.Failures[f]; ok {
			errs = append(errs, err)
		}
	}
	return errs
}

// FailedFormats returns the formats that were not written, in export order.
func (e *PartialError) FailedFormats() []Format {
	var out []Format
	for _, f := range AllFormats {
		if _, ok := e.Failures[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Options configures an Exporter.
type Options struct {
	Dir             string
	Formats         []Format
	TimestampLayout string
	// Now stamps decks that carry no capture time. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Exporter renders decks and writes them atomically into one directory.
type Exporter struct {
	dir     string
	formats []Format
	layout  string
	now     func() time.Time
	log     *slog.Logger

	writeFile func(path string, data []byte, perm os.FileMode) error

	// mu serializes name selection so concurrent exports cannot pick the
	// same stem.
	mu sync.Mutex
}

// New validates opts, creates the export directory and checks that it is
// writable.
func New(opts Options) (*Exporter, error) {
	if opts.Dir == "" {
		return nil, &ConfigError{Field: "directory", Err: errors.New("export directory is required")}
	}
	if len(opts.Formats) == 0 {
		return nil, &ConfigError{Field: "formats", Err: errors.New("at least one export format is required")}
	}
	for _, f := range opts.Formats {
		if !f.Valid() {
			return nil, &ConfigError{Field: "formats", Err: fmt.Errorf("unknown export format %q", f)}
		}
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, &ConfigError{Field: "directory", Err: err}
	}
	probe, err := os.CreateTemp(opts.Dir, ".arenadeck-probe-*")
	if err != nil {
		return nil, &ConfigError{Field: "directory", Err: fmt.Errorf("not writable: %w", err)}
	}
	probe.Close()
	os.Remove(probe.Name())

	layout := opts.TimestampLayout
	if layout == "" {
		layout = DefaultTimestampLayout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Exporter{
		dir:       opts.Dir,
		formats:   dedupeFormats(opts.Formats),
		layout:    layout,
		now:       now,
		log:       log,
		writeFile: safefile.WriteFile,
	}, nil
}

// Formats returns the configured formats in export order.
func (e *Exporter) Formats() []Format {
	return append([]Format(nil), e.formats...)
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Export writes d in every configured format.
func (e *Exporter) Export(ctx context.Context, d *deck.Deck) ([]Artifact, error) {
	return e.ExportFormats(ctx, d, e.formats)
}

// ExportFormats writes d in the given formats. Files are written
// concurrently, each one atomically: a reader sees the complete file or
// nothing. If any format fails, the others are still written and a
// *PartialError is returned together with the written artifacts.
func (e *Exporter) ExportFormats(ctx context.Context, d *deck.Deck, formats []Format) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	formats = dedupeFormats(formats)
	if len(formats) == 0 {
		return nil, nil
	}

	failures := make(map[Format]error)
	pending := make([]Artifact, 0, len(formats))
	for _, f := range formats {
		payload, err := Render(f, d)
		if err != nil {
			failures[f] = err
			continue
		}
		pending = append(pending, Artifact{Format: f, Payload: payload})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stem := e.stem(d, formats)
	for i := range pending {
		pending[i].Path = filepath.Join(e.dir, stem+"."+pending[i].Format.Extension())
	}

	errs := make([]error, len(pending))
	var wg sync.WaitGroup
	for i := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.writeFile(pending[i].Path, pending[i].Payload, 0o644)
		}(i)
	}
	wg.Wait()

	var written []Artifact
	for i, a := range pending {
		if errs[i] != nil {
			failures[a.Format] = errs[i]
			e.log.Warn("export write failed", "deck_id", d.ID, "format", a.Format, "path", a.Path, "err", errs[i])
			continue
		}
		e.log.Debug("exported", "deck_id", d.ID, "format", a.Format, "path", a.Path)
		written = append(written, a)
	}

	if len(failures) > 0 {
		return written, &PartialError{DeckID: d.ID, Failures: failures, Written: written}
	}
	return written, nil
}

// FileStem returns the file name without extension for d:
// <name>_<id>_<timestamp>.
func (e *Exporter) FileStem(d *deck.Deck) string {
	at := d.CapturedAt
	if at.IsZero() {
		at = e.now()
	}
	return Sanitize(d.Name) + "_" + Sanitize(d.ID) + "_" + at.Format(e.layout)
}

// stem picks a stem for which no file of any requested format exists yet,
// adding -1, -2, ... on collision.
func (e *Exporter) stem(d *deck.Deck, formats []Format) string {
	base := e.FileStem(d)
	for n := 0; n < maxCollisionSuffix; n++ {
		candidate := base
		if n > 0 {
			candidate = base + "-" + strconv.Itoa(n)
		}
		if !e.anyExists(candidate, formats) {
			return candidate
		}
	}
	return base + "-" + strconv.FormatInt(time.Now().UnixNano(), 10)
}

func (e *Exporter) anyExists(stem string, formats []Format) bool {
	for _, f := range formats {
		_, err := os.Lstat(filepath.Join(e.dir, stem+"."+f.Extension()))
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return true
		}
	}
	return false
}

func dedupeFormats(formats []Format) []Format {
	seen := make(map[Format]bool, len(formats))
	var out []Format
	for _, f := range AllFormats {
		for _, g := range formats {
			if g == f && !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
