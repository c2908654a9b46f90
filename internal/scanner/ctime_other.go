//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package scanner

import (
	"io/fs"
	"time"
)

func creationTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
