//go:build windows

package arenadeck

import (
	"os"
	"strconv"
	"syscall"
)

// Windows has no inode in FileInfo; the creation time changes when MTGA
// replaces Player.log at startup.
func platformKey(fi os.FileInfo) string {
	d, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return ""
	}
	return strconv.FormatInt(d.CreationTime.Nanoseconds(), 10)
}
