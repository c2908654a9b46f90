package contrib

import (
	"context"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mvp-joe/project-portfolio/internal/git"
	"github.com/mvp-joe/project-portfolio/internal/scanner"
)

// ProjectType classifies a project by the number of people behind it.
type ProjectType string

const (
	Individual    ProjectType = "individual"
	Collaborative ProjectType = "collaborative"
	Unknown       ProjectType = "unknown"
)

// Mode records where authorship evidence came from.
type Mode string

const (
	ModeGit   Mode = "git"
	ModeLocal Mode = "local"
)

// Detection is the outcome of project type detection.
type Detection struct {
	Type ProjectType
	Mode Mode
	// Authors holds distinct commit author names (git mode).
	Authors []string
	// Owners holds distinct filesystem owners (local mode).
	Owners []string
	// TextNames holds names found in CONTRIBUTORS, AUTHORS and README files.
	TextNames []string
}

// Detector classifies projects as individual or collaborative.
type Detector struct {
	git git.Operations
}

// NewDetector creates a Detector backed by ops.
func NewDetector(ops git.Operations) *Detector {
	return &Detector{git: ops}
}

// Detect classifies the project at root. Git mode is used when root is a
// repository with history; any git failure falls back to local mode.
func (d *Detector) Detect(ctx context.Context, root string, files []scanner.FileEntry) Detection {
	textNames := CollectTextNames(files)

	if d.git.IsRepository(ctx, root) {
		authors, err := d.git.Authors(ctx, root)
		if err == nil {
			names := distinctAuthorNames(authors)
			return Detection{
				Type:      classify(len(names)),
				Mode:      ModeGit,
				Authors:   names,
				Owners:    DistinctOwners(files),
				TextNames: textNames,
			}
		}
		log.Printf("Warning: git history unavailable for %s, using filesystem metadata: %v", root, err)
	}

	return DetectLocal(files, textNames)
}

// DetectLocal classifies from filesystem owners, then from contributor
// names found in text files. One owner alone is not evidence of authorship,
// so without text names the project is unknown.
func DetectLocal(files []scanner.FileEntry, textNames []string) Detection {
	owners := DistinctOwners(files)
	det := Detection{Mode: ModeLocal, Owners: owners, TextNames: textNames}

	switch {
	case len(owners) >= 2:
		det.Type = Collaborative
	default:
		det.Type = classify(len(textNames))
	}
	return det
}

func classify(n int) ProjectType {
	switch {
	case n >= 2:
		return Collaborative
	case n == 1:
		return Individual
	default:
		return Unknown
	}
}

func distinctAuthorNames(authors []git.Author) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range authors {
		if a.Name == "" || seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// DistinctOwners returns the sorted set of known filesystem owners.
func DistinctOwners(files []scanner.FileEntry) []string {
	seen := make(map[string]bool)
	var owners []string
	for _, f := range files {
		if f.Owner == "" || f.Owner == scanner.UnknownOwner || seen[f.Owner] {
			continue
		}
		seen[f.Owner] = true
		owners = append(owners, f.Owner)
	}
	sort.Strings(owners)
	return owners
}

// CollectTextNames extracts contributor names from root-level CONTRIBUTORS
// and AUTHORS files (whole file) and README files (contributor and author
// sections only). Files are read in path order.
func CollectTextNames(files []scanner.FileEntry) []string {
	var candidates []scanner.FileEntry
	for _, f := range files {
		if strings.Contains(f.RelPath, "/") {
			continue
		}
		if textFileKind(f.RelPath) != "" {
			candidates = append(candidates, f)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].RelPath < candidates[j].RelPath })

	var names []string
	for _, f := range candidates {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			log.Printf("Warning: skipping unreadable file %s: %v", f.RelPath, err)
			continue
		}
		text := string(content)
		if textFileKind(f.RelPath) == "readme" {
			text = readmeSections(text)
		}
		for _, name := range ExtractNames(text) {
			names = addName(names, name)
		}
	}
	return names
}

// textFileKind returns "list" for CONTRIBUTORS/AUTHORS files, "readme" for
// README files and "" otherwise. Extensions are ignored.
func textFileKind(relPath string) string {
	base := strings.ToUpper(path.Base(relPath))
	stem := strings.TrimSuffix(base, path.Ext(base))
	switch {
	case stem == "CONTRIBUTORS" || stem == "AUTHORS":
		return "list"
	case strings.HasPrefix(base, "README"):
		return "readme"
	}
	return ""
}
