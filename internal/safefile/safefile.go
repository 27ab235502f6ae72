// Package safefile provides hardened file operations: opening a log file
// without following symlinks and replacing files atomically.
package safefile

import (
	"errors"
	"os"
)

// ErrNotRegularFile is returned when a path refers to something other than a
// regular file (symlink, FIFO, device, socket or directory).
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens path for reading and verifies it is a regular file.
//
// The path is checked with os.Lstat before opening and the descriptor is
// checked again after opening, which narrows the window in which the log
// could be swapped for a symlink or special file.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}

	return f, info, nil
}
