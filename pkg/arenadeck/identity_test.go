package arenadeck_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
)

func TestIdentify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Player.log")
	writeFile(t, path, "header line\n")

	id, err := arenadeck.Identify(path)
	require.NoError(t, err)
	assert.False(t, id.IsZero())
	assert.Equal(t, 12, id.HeadLen)

	t.Run("growth keeps identity", func(t *testing.T) {
		appendFile(t, path, strings.Repeat("x", 4096))
		same, err := id.SameFile(path)
		require.NoError(t, err)
		assert.True(t, same)

		grown, err := arenadeck.Identify(path)
		require.NoError(t, err)
		assert.Equal(t, 1024, grown.HeadLen)
	})

	t.Run("rewritten head differs", func(t *testing.T) {
		writeFile(t, path, "HEADER LINE\n")
		same, err := id.SameFile(path)
		require.NoError(t, err)
		assert.False(t, same)
	})

	t.Run("replaced file differs", func(t *testing.T) {
		writeFile(t, path, "header line\n")
		cur, err := arenadeck.Identify(path)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))
		other := filepath.Join(dir, "keep")
		writeFile(t, other, "pin inode")
		writeFile(t, path, "header line\n")

		same, err := cur.SameFile(path)
		require.NoError(t, err)
		if cur.Key == "" {
			t.Skip("no platform file key")
		}
		next, err := arenadeck.Identify(path)
		require.NoError(t, err)
		assert.Equal(t, cur.Key != next.Key, !same)
	})
}
