//go:build !windows

package arenadeck

import (
	"fmt"
	"os"
	"syscall"
)

func platformKey(fi os.FileInfo) string {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d:%d", st.Dev, st.Ino)
}
