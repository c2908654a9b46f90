//go:build unix

package scanner

import (
	"io/fs"
	"os/user"
	"strconv"
	"syscall"
)

// ownerOf resolves the file's uid to a user name.
func (r *ownerResolver) ownerOf(path string, info fs.FileInfo) string {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return r.currentUserName()
	}

	uid := strconv.FormatUint(uint64(st.Uid), 10)
	if name, ok := r.names[uid]; ok {
		return name
	}

	name := UnknownOwner
	if u, err := user.LookupId(uid); err == nil && u.Username != "" {
		name = u.Username
	}
	r.names[uid] = name
	return name
}
