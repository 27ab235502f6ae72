// Package cursor persists the read position in the MTG Arena log between
// runs.
package cursor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arenadeck/arenadeck-go/internal/safefile"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
)

// FileName is the cursor file name inside the state directory.
const FileName = "cursor.yaml"

// formatVersion is the on-disk format version.
const formatVersion = 1

// maxFileSize bounds what Load reads.
const maxFileSize = 64 * 1024

// Cursor is the last fully processed position.
type Cursor struct {
	Path      string                 `yaml:"path,omitempty"`
	Offset    int64                  `yaml:"offset"`
	Identity  arenadeck.FileIdentity `yaml:"identity"`
	UpdatedAt time.Time              `yaml:"updated_at"`
}

// IsZero reports whether c holds no position.
func (c Cursor) IsZero() bool {
	return c.Offset == 0 && c.Identity.IsZero()
}

// ResumePoint converts c for arenadeck.WithResume. A zero cursor yields nil.
func (c Cursor) ResumePoint() *arenadeck.ResumePoint {
	if c.IsZero() {
		return nil
	}
	return &arenadeck.ResumePoint{Path: c.Path, Offset: c.Offset, Identity: c.Identity}
}

type document struct {
	Version int `yaml:"version"`
	Cursor  `yaml:",inline"`
}

// Store reads and writes the cursor file.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore returns a Store for the file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, log: logger}
}

// Path returns the cursor file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted cursor. It never fails: a missing, unreadable or
// corrupt file yields the zero cursor, which means start over.
func (s *Store) Load() Cursor {
	c, err := s.read()
	switch {
	case err == nil:
		return c
	case errors.Is(err, fs.ErrNotExist):
		s.log.Debug("no cursor file, starting fresh", "path", s.path)
	default:
		s.log.Warn("ignoring unreadable cursor file", "path", s.path, "err", err)
	}
	return Cursor{}
}

func (s *Store) read() (Cursor, error) {
	f, _, err := safefile.OpenRegular(s.path)
	if err != nil {
		return Cursor{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return Cursor{}, err
	}
	if len(data) > maxFileSize {
		return Cursor{}, fmt.Errorf("cursor file too large")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	if doc.Version != formatVersion {
		return Cursor{}, fmt.Errorf("unsupported cursor version %d", doc.Version)
	}
	if doc.Offset < 0 {
		return Cursor{}, fmt.Errorf("negative offset %d", doc.Offset)
	}
	return doc.Cursor, nil
}

// Save atomically replaces the cursor file with c. The file is either the
// old or the new cursor, never a mix.
func (s *Store) Save(c Cursor) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	data, err := yaml.Marshal(document{Version: formatVersion, Cursor: c})
	if err != nil {
		return fmt.Errorf("encode cursor: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := safefile.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
