package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the real Operations implementation.
// These tests use actual git commands and run sequentially (NO t.Parallel()).

func TestGitOpsIntegration(t *testing.T) {
	// NO t.Parallel() - these tests run sequentially to avoid resource exhaustion
	requireGit(t)

	ctx := context.Background()
	gitOps := NewOperations()

	t.Run("IsRepository at top level", func(t *testing.T) {
		dir := createTestGitRepo(t)
		assert.True(t, gitOps.IsRepository(ctx, dir))
	})

	t.Run("IsRepository false for subdirectory", func(t *testing.T) {
		dir := createTestGitRepo(t)
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.MkdirAll(sub, 0755))
		assert.False(t, gitOps.IsRepository(ctx, sub))
	})

	t.Run("IsRepository false for plain directory", func(t *testing.T) {
		assert.False(t, gitOps.IsRepository(ctx, t.TempDir()))
	})

	t.Run("Authors lists every commit", func(t *testing.T) {
		dir := createTestGitRepo(t)
		commitFileAs(t, dir, "a.py", "Alice", "alice@example.com")
		commitFileAs(t, dir, "b.py", "Bob", "bob@example.com")

		authors, err := gitOps.Authors(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, []Author{
			{Name: "Bob", Email: "bob@example.com"},
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Test User", Email: "test@example.com"},
		}, authors)
	})

	t.Run("Authors on empty repository is unavailable", func(t *testing.T) {
		dir := t.TempDir()
		runGitCmd(t, dir, "init", "-b", "main")
		_, err := gitOps.Authors(ctx, dir)
		assert.True(t, errors.Is(err, ErrGitUnavailable))
	})

	t.Run("TrackedFiles", func(t *testing.T) {
		dir := createTestGitRepo(t)
		commitFileAs(t, dir, "src/app.py", "Alice", "alice@example.com")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0644))

		files, err := gitOps.TrackedFiles(ctx, dir)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"README.md", "src/app.py"}, files)
	})

	t.Run("LastAuthors picks most recent change", func(t *testing.T) {
		dir := createTestGitRepo(t)
		commitFileAs(t, dir, "shared.py", "Alice", "alice@example.com")
		commitFileAs(t, dir, "shared.py", "Bob", "bob@example.com")
		commitFileAs(t, dir, "solo.py", "Alice", "alice@example.com")

		last, err := gitOps.LastAuthors(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, Author{Name: "Bob", Email: "bob@example.com"}, last["shared.py"])
		assert.Equal(t, Author{Name: "Alice", Email: "alice@example.com"}, last["solo.py"])
		assert.Equal(t, Author{Name: "Test User", Email: "test@example.com"}, last["README.md"])
	})

	t.Run("LastAuthors keys match TrackedFiles for quoted names", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("quotes are not valid in Windows file names")
		}
		dir := createTestGitRepo(t)
		commitFileAs(t, dir, `say "hi".py`, "Alice", "alice@example.com")

		files, err := gitOps.TrackedFiles(ctx, dir)
		require.NoError(t, err)
		assert.Contains(t, files, `say "hi".py`)

		last, err := gitOps.LastAuthors(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, Author{Name: "Alice", Email: "alice@example.com"}, last[`say "hi".py`])
	})

	t.Run("non-git directory wraps ErrGitUnavailable", func(t *testing.T) {
		_, err := gitOps.TrackedFiles(ctx, t.TempDir())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGitUnavailable))
	})
}

func TestParseNameOnlyLog(t *testing.T) {
	t.Parallel()

	out := "\x1eMerge\x1fmerge@example.com\x00" +
		"\x1eBob\x1fbob@example.com\x00\nb.py\x00shared.py\x00 lead space.py\x00" +
		"\x1eAlice\x1falice@example.com\x00\nshared.py\x00a.py\x00say \"hi\".py\x00"

	last := parseNameOnlyLog(out)

	assert.Equal(t, map[string]Author{
		"b.py":           {Name: "Bob", Email: "bob@example.com"},
		"shared.py":      {Name: "Bob", Email: "bob@example.com"},
		" lead space.py": {Name: "Bob", Email: "bob@example.com"},
		"a.py":           {Name: "Alice", Email: "alice@example.com"},
		`say "hi".py`:    {Name: "Alice", Email: "alice@example.com"},
	}, last)
}

// Test helpers

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available on PATH")
	}
}

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// Initialize repo
	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	// Configure git identity
	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")
	runGitCmd(t, dir, "config", "commit.gpgsign", "false")

	// Create initial commit
	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

// commitFileAs writes rel with unique content and commits it under the given author.
func commitFileAs(t *testing.T, dir, rel, name, email string) {
	t.Helper()
	abs := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(name + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	runGitCmd(t, dir, "add", rel)
	runGitCmd(t, dir, "-c", "user.name="+name, "-c", "user.email="+email,
		"commit", "-m", "update "+rel, "--author", name+" <"+email+">")
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}
