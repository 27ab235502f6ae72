//go:build windows

package safefile

// syncDir is a no-op on Windows; directories cannot be opened for fsync and
// MoveFileEx used by os.Rename already replaces the target in place.
func syncDir(dir string) error {
	return nil
}
