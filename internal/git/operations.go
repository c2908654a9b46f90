package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrGitUnavailable is returned when root is not a repository, git is not
// installed, or a git command fails. Callers fall back to filesystem mode.
var ErrGitUnavailable = errors.New("git unavailable")

// Author is a commit author identity.
type Author struct {
	Name  string
	Email string
}

// Operations defines the git queries used for project classification and
// contribution attribution. This allows mocking git commands in tests.
type Operations interface {
	// IsRepository reports whether root is the top level of a git worktree.
	IsRepository(ctx context.Context, root string) bool

	// Authors returns the author of every commit reachable from HEAD,
	// newest first.
	Authors(ctx context.Context, root string) ([]Author, error)

	// TrackedFiles returns the POSIX paths of all tracked files relative to root.
	TrackedFiles(ctx context.Context, root string) ([]string, error)

	// LastAuthors maps each path touched by history to the author of the most
	// recent commit that changed it.
	LastAuthors(ctx context.Context, root string) (map[string]Author, error)
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

// run executes git in root and returns stdout. Failures carry the trimmed
// stderr and wrap ErrGitUnavailable.
func (g *gitOps) run(ctx context.Context, root string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", root, "-c", "core.quotepath=off"}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("%w: git %s failed in %q: %s", ErrGitUnavailable, args[0], root, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGitUnavailable, err)
	}
	return out, nil
}

func (g *gitOps) IsRepository(ctx context.Context, root string) bool {
	out, err := g.run(ctx, root, "rev-parse", "--show-toplevel")
	if err != nil {
		return false
	}
	return samePath(strings.TrimSpace(string(out)), root)
}

func (g *gitOps) Authors(ctx context.Context, root string) ([]Author, error) {
	out, err := g.run(ctx, root, "log", "--format=%an%x1f%ae")
	if err != nil {
		return nil, err
	}

	var authors []Author
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		authors = append(authors, parseAuthor(line))
	}
	return authors, nil
}

func (g *gitOps) TrackedFiles(ctx context.Context, root string) ([]string, error) {
	out, err := g.run(ctx, root, "ls-files", "-z")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, path := range bytes.Split(out, []byte{0}) {
		if len(path) > 0 {
			files = append(files, string(path))
		}
	}
	return files, nil
}

func (g *gitOps) LastAuthors(ctx context.Context, root string) (map[string]Author, error) {
	// One pass over history, newest first: the first commit that names a
	// path is its most recent change. -z keeps paths unquoted so they match
	// TrackedFiles.
	out, err := g.run(ctx, root, "log", "-z", "--format=%x1e%an%x1f%ae", "--name-only", "--relative", "--", ".")
	if err != nil {
		return nil, err
	}
	return parseNameOnlyLog(string(out)), nil
}

// parseNameOnlyLog parses records of the form
// "\x1eName\x1fEmail\x00\npath\x00path\x00".
func parseNameOnlyLog(out string) map[string]Author {
	last := make(map[string]Author)
	for _, record := range strings.Split(out, "\x1e") {
		header, rest, _ := strings.Cut(record, "\x00")
		if strings.TrimSpace(header) == "" {
			continue
		}
		author := parseAuthor(header)
		rest = strings.TrimPrefix(rest, "\n")
		for _, path := range strings.Split(rest, "\x00") {
			if path == "" {
				continue
			}
			if _, seen := last[path]; !seen {
				last[path] = author
			}
		}
	}
	return last
}

func parseAuthor(line string) Author {
	name, email, _ := strings.Cut(strings.TrimRight(line, "\r"), "\x1f")
	return Author{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
}

// samePath compares paths after resolving symlinks, so /tmp and /private/tmp
// on macOS are equal.
func samePath(a, b string) bool {
	resolve := func(p string) string {
		if r, err := filepath.EvalSymlinks(p); err == nil {
			p = r
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		return filepath.Clean(p)
	}
	return resolve(a) == resolve(b)
}
