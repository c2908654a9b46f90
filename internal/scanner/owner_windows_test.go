//go:build windows

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerOf_WindowsSecurityDescriptor(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "owned.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	r := newOwnerResolver()
	owner := r.ownerOf(path, info)

	assert.NotEmpty(t, owner)
	assert.NotEqual(t, UnknownOwner, owner)
	assert.NotContains(t, owner, `\`)
	assert.Len(t, r.names, 1)
}
