package shape

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arenadeck/arenadeck-go/internal/safefile"
)

const (
	// MaxShapeFileSize is the maximum allowed size for a shape file (1MB).
	MaxShapeFileSize = 1 * 1024 * 1024

	// MaxShapeCount is the maximum number of shapes in one file.
	MaxShapeCount = 100

	// MaxKeysPerField limits the aliases listed for one field.
	MaxKeysPerField = 32

	// MaxKeyLength limits the length of a single key.
	MaxKeyLength = 128

	// SupportedVersion is the currently supported shape file format version.
	SupportedVersion = 1
)

// sanitizePathError removes the path from os.PathError so error messages do
// not expose file system paths.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads and parses a shape file from the given path.
// Non-regular files (FIFO, device, symlink) are rejected and the read is
// bounded by MaxShapeFileSize.
func Load(path string) (*ShapeFile, error) {
	f, info, err := safefile.OpenRegular(path)
	if errors.Is(err, safefile.ErrNotRegularFile) {
		return nil, errors.New("shape file must be a regular file (not FIFO, device, or special file)")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open shape file: %w", sanitizePathError(err))
	}
	defer f.Close()

	if info.Size() == 0 {
		return nil, errors.New("shape file is empty")
	}
	if info.Size() > MaxShapeFileSize {
		return nil, fmt.Errorf("shape file too large: %d bytes (max %d)", info.Size(), MaxShapeFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxShapeFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read shape file: %w", sanitizePathError(err))
	}
	return LoadBytes(data)
}

// LoadBytes parses a shape file from a byte slice.
func LoadBytes(data []byte) (*ShapeFile, error) {
	if len(data) == 0 {
		return nil, errors.New("shape file is empty")
	}
	if len(data) > MaxShapeFileSize {
		return nil, fmt.Errorf("shape file too large: %d bytes (max %d)", len(data), MaxShapeFileSize)
	}

	var sf ShapeFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := sf.Validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

// Validate checks the version, the shape count, required fields, unique ids
// and key limits.
func (sf *ShapeFile) Validate() error {
	if sf.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", sf.Version, SupportedVersion),
		}
	}
	if len(sf.Shapes) == 0 {
		return &ValidationError{Field: "shapes", Message: "at least one shape is required"}
	}
	if len(sf.Shapes) > MaxShapeCount {
		return &ValidationError{
			Field:   "shapes",
			Message: fmt.Sprintf("too many shapes (%d), maximum allowed is %d", len(sf.Shapes), MaxShapeCount),
		}
	}

	seen := make(map[string]int, len(sf.Shapes))
	for i, s := range sf.Shapes {
		if s.ID == "" {
			return &ShapeError{Index: i, Field: "id", Message: "id is required"}
		}
		if prev, ok := seen[s.ID]; ok {
			return &ShapeError{
				Index:   i,
				ID:      s.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at shape[%d])", prev),
			}
		}
		seen[s.ID] = i

		if len(s.MainKeys) == 0 {
			return &ShapeError{Index: i, ID: s.ID, Field: "main_keys", Message: "main_keys is required"}
		}
		if len(s.IDKeys) == 0 {
			return &ShapeError{Index: i, ID: s.ID, Field: "id_keys", Message: "id_keys is required"}
		}
		if err := s.checkKeys(i); err != nil {
			return err
		}
	}
	return nil
}

func (s Shape) checkKeys(index int) error {
	fields := []struct {
		name string
		keys []string
	}{
		{"container_keys", s.ContainerKeys},
		{"id_keys", s.IDKeys},
		{"name_keys", s.NameKeys},
		{"format_keys", s.FormatKeys},
		{"description_keys", s.DescriptionKeys},
		{"main_keys", s.MainKeys},
		{"sideboard_keys", s.SideboardKeys},
		{"commander_keys", s.CommanderKeys},
		{"card_id_keys", s.CardIDKeys},
		{"quantity_keys", s.QuantityKeys},
		{"card_name_keys", s.CardNameKeys},
	}
	for _, f := range fields {
		if len(f.keys) > MaxKeysPerField {
			return &ShapeError{Index: index, ID: s.ID, Field: f.name,
				Message: fmt.Sprintf("too many keys (%d), maximum allowed is %d", len(f.keys), MaxKeysPerField)}
		}
		for _, k := range f.keys {
			if k == "" {
				return &ShapeError{Index: index, ID: s.ID, Field: f.name, Message: "empty key"}
			}
			if len(k) > MaxKeyLength {
				return &ShapeError{Index: index, ID: s.ID, Field: f.name,
					Message: fmt.Sprintf("key too long: %d bytes (max %d)", len(k), MaxKeyLength)}
			}
		}
	}
	return nil
}
