package scanner

import (
	"os/user"
	"strings"
)

// ownerResolver maps file ownership to user names, caching lookups for one scan.
type ownerResolver struct {
	names   map[string]string
	current string
}

func newOwnerResolver() *ownerResolver {
	return &ownerResolver{names: make(map[string]string)}
}

// currentUserName returns the process user, "Unknown" if it cannot be resolved.
func (r *ownerResolver) currentUserName() string {
	if r.current != "" {
		return r.current
	}
	r.current = UnknownOwner
	if u, err := user.Current(); err == nil && u.Username != "" {
		r.current = stripDomain(u.Username)
	}
	return r.current
}

// stripDomain drops a DOMAIN\ prefix from Windows account names.
func stripDomain(name string) string {
	if i := strings.LastIndex(name, `\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
