//go:build windows

package scanner

import (
	"io/fs"

	"golang.org/x/sys/windows"
)

// ownerOf reads the owner SID from the file's security descriptor and
// resolves it to an account name. Lookup failures fall back to the process user.
func (r *ownerResolver) ownerOf(path string, info fs.FileInfo) string {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.OWNER_SECURITY_INFORMATION)
	if err != nil {
		return r.currentUserName()
	}
	sid, _, err := sd.Owner()
	if err != nil || sid == nil {
		return r.currentUserName()
	}

	key := sid.String()
	if name, ok := r.names[key]; ok {
		return name
	}

	name := r.currentUserName()
	if account, _, _, err := sid.LookupAccount(""); err == nil && account != "" {
		name = stripDomain(account)
	}
	r.names[key] = name
	return name
}
