package scanner

import (
	"io/fs"
	"syscall"
	"time"
)

// creationTime returns the inode change time, the closest Linux exposes to a
// creation time through stat(2).
func creationTime(info fs.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
}
