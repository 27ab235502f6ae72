package shape_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck/shape"
)

func TestLoad_Valid(t *testing.T) {
	sf, err := shape.Load("testdata/tracker.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, sf.Version)
	require.Len(t, sf.Shapes, 1)
	assert.Equal(t, "tracker_export", sf.Shapes[0].ID)
	assert.Equal(t, []string{"cards"}, sf.Shapes[0].MainKeys)
	assert.Equal(t, []string{"arena_id"}, sf.Shapes[0].CardIDKeys)
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	_, err := shape.Load("testdata/invalid_version.yaml")
	var valErr *shape.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "version", valErr.Field)
}

func TestLoad_DuplicateID(t *testing.T) {
	_, err := shape.Load("testdata/duplicate_id.yaml")
	var shErr *shape.ShapeError
	require.True(t, errors.As(err, &shErr))
	assert.Equal(t, 1, shErr.Index)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestLoad_MissingMainKeys(t *testing.T) {
	_, err := shape.Load("testdata/missing_main_keys.yaml")
	var shErr *shape.ShapeError
	require.True(t, errors.As(err, &shErr))
	assert.Equal(t, "main_keys", shErr.Field)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := shape.Load("testdata/nonexistent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open shape file")
	assert.NotContains(t, err.Error(), "nonexistent.yaml")
}

func TestLoad_Directory(t *testing.T) {
	_, err := shape.Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regular file")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := shape.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "minimal",
			data: "version: 1\nshapes:\n  - id: a\n    id_keys: [id]\n    main_keys: [cards]\n",
		},
		{
			name:    "no shapes",
			data:    "version: 1\nshapes: []\n",
			wantErr: "at least one shape",
		},
		{
			name:    "missing id",
			data:    "version: 1\nshapes:\n  - id_keys: [id]\n    main_keys: [cards]\n",
			wantErr: "id is required",
		},
		{
			name:    "missing id keys",
			data:    "version: 1\nshapes:\n  - id: a\n    main_keys: [cards]\n",
			wantErr: "id_keys is required",
		},
		{
			name:    "empty key",
			data:    "version: 1\nshapes:\n  - id: a\n    id_keys: ['']\n    main_keys: [cards]\n",
			wantErr: "empty key",
		},
		{
			name:    "key too long",
			data:    "version: 1\nshapes:\n  - id: a\n    id_keys: [" + strings.Repeat("k", shape.MaxKeyLength+1) + "]\n    main_keys: [cards]\n",
			wantErr: "key too long",
		},
		{
			name:    "bad yaml",
			data:    "version: [1\n",
			wantErr: "failed to parse YAML",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := shape.LoadBytes([]byte(tt.data))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBytes_TooManyShapes(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("version: 1\nshapes:\n")
	for i := 0; i <= shape.MaxShapeCount; i++ {
		fmt.Fprintf(&sb, "  - id: s%d\n    id_keys: [id]\n    main_keys: [cards]\n", i)
	}
	_, err := shape.LoadBytes([]byte(sb.String()))
	var valErr *shape.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "too many shapes")
}

func TestLoadBytes_TooLarge(t *testing.T) {
	_, err := shape.LoadBytes(make([]byte, shape.MaxShapeFileSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
