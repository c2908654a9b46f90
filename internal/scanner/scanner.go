package scanner

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ignoredDirs are never descended into. Matching is case-sensitive.
var ignoredDirs = map[string]bool{
	".git":          true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	"node_modules":  true,
	"dist":          true,
	"build":         true,
	".idea":         true,
	".vscode":       true,
	".pytest_cache": true,
	".mypy_cache":   true,
	"Lib":           true,
	"site-packages": true,
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Scanner walks a project root and builds its file hierarchy.
type Scanner struct {
	ignorePatterns []compiledPattern
	owners         *ownerResolver
}

// New creates a scanner. Extra ignore patterns are globs matched against
// POSIX paths relative to the scan root (e.g. "docs/**", "*.min.js").
func New(ignorePatterns []string) (*Scanner, error) {
	s := &Scanner{owners: newOwnerResolver()}
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		s.ignorePatterns = append(s.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}
	return s, nil
}

// Scan walks root and returns the hierarchy plus a flat list of files.
// It never fails: problems are reported as placeholder nodes.
func (s *Scanner) Scan(root string) *Snapshot {
	snap := &Snapshot{Files: []FileEntry{}}

	info, err := os.Stat(root)
	switch {
	case err != nil && errors.Is(err, fs.ErrNotExist):
		snap.Root = placeholder(NameNotFound)
		return snap
	case err != nil && errors.Is(err, fs.ErrPermission):
		snap.Root = &FileNode{Name: filepath.Base(root), Kind: KindDir, Children: []*FileNode{placeholder(NameNoAccess)}}
		return snap
	case err != nil:
		snap.Root = placeholder(NameNotFound)
		return snap
	case !info.IsDir():
		snap.Root = placeholder(NameNotADirectory)
		return snap
	}

	snap.Root = s.scanDir(root, "", filepath.Base(root), snap)
	return snap
}

// IsIgnored reports whether a relative POSIX path is excluded, either because
// one of its directories is in the fixed ignore list or a pattern matches.
func (s *Scanner) IsIgnored(relPath string) bool {
	dir := path.Dir(relPath)
	for dir != "." && dir != "/" && dir != "" {
		if ignoredDirs[path.Base(dir)] {
			return true
		}
		dir = path.Dir(dir)
	}
	return s.matchesIgnore(relPath)
}

func (s *Scanner) scanDir(absDir, relDir, name string, snap *Snapshot) *FileNode {
	node := &FileNode{Name: name, Kind: KindDir, Children: []*FileNode{}}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			node.Children = append(node.Children, placeholder(NameNoAccess))
		} else {
			node.Children = append(node.Children, placeholder(NameNotFound))
		}
		return node
	}

	for _, entry := range entries {
		childAbs := filepath.Join(absDir, entry.Name())
		childRel := entry.Name()
		if relDir != "" {
			childRel = relDir + "/" + entry.Name()
		}

		if entry.IsDir() {
			if ignoredDirs[entry.Name()] || s.matchesIgnore(childRel) {
				continue
			}
			node.Children = append(node.Children, s.scanDir(childAbs, childRel, entry.Name(), snap))
			continue
		}

		if s.matchesIgnore(childRel) {
			continue
		}

		fileNode, fileEntry, ok := s.scanFile(childAbs, childRel, entry.Name())
		if !ok {
			continue
		}
		node.Children = append(node.Children, fileNode)
		if fileEntry.RelPath != "" {
			snap.Files = append(snap.Files, fileEntry)
		}
	}

	return node
}

func (s *Scanner) scanFile(absPath, relPath, name string) (*FileNode, FileEntry, bool) {
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return placeholder(NameNoAccess), FileEntry{}, true
		}
		// Dangling symlinks and files removed mid-walk.
		log.Printf("Warning: skipping unreadable file %s: %v", relPath, err)
		return nil, FileEntry{}, false
	}
	if info.IsDir() {
		// Symlinked directories are not followed.
		return nil, FileEntry{}, false
	}

	size := info.Size()
	created := creationTime(info)
	modified := info.ModTime()
	owner := s.owners.ownerOf(absPath, info)

	node := &FileNode{
		Name:      name,
		Kind:      KindFile,
		SizeBytes: &size,
		Created:   &Timestamp{Time: created},
		Modified:  &Timestamp{Time: modified},
		Owner:     owner,
	}
	entry := FileEntry{
		RelPath:  relPath,
		AbsPath:  absPath,
		Size:     size,
		Created:  created,
		Modified: modified,
		Owner:    owner,
	}
	return node, entry, true
}

// matchesIgnore checks the path against user ignore patterns. A directory
// "docs" also matches "docs/**".
func (s *Scanner) matchesIgnore(relPath string) bool {
	for _, cp := range s.ignorePatterns {
		if cp.glob.Match(relPath) || cp.glob.Match(relPath+"/**") {
			return true
		}
		if !strings.Contains(relPath, "/") && strings.HasPrefix(cp.pattern, "**/") {
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(relPath) {
				return true
			}
		}
	}
	return false
}

func placeholder(name string) *FileNode {
	return &FileNode{Name: name, Kind: KindDir, Children: []*FileNode{}}
}
