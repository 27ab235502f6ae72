package safefile

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
)

const writeBufSize = 64 * 1024

// WriteFile atomically replaces path with data.
// See Write for the guarantees.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return Write(path, bytes.NewReader(data), perm)
}

// Write copies r into a temporary file next to path, fsyncs it and renames it
// over path. Readers of path observe either the previous content or the
// complete new content, never a prefix. On any error the temporary file is
// removed and path is left untouched.
func Write(path string, r io.Reader, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriterSize(tmp, writeBufSize)
	if _, err := io.Copy(bw, r); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// Best effort: persist the rename itself.
	_ = syncDir(dir)
	return nil
}

// IsTemp reports whether name looks like a temporary file left by Write.
func IsTemp(name string) bool {
	base := filepath.Base(name)
	if len(base) == 0 || base[0] != '.' {
		return false
	}
	return bytes.Contains([]byte(base), []byte(".tmp-"))
}
