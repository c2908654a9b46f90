//go:build !unix && !windows

package scanner

import "io/fs"

// ownerOf falls back to the process user on platforms without a file
// ownership lookup.
func (r *ownerResolver) ownerOf(path string, info fs.FileInfo) string {
	return r.currentUserName()
}
