package contrib

import (
	"context"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/mvp-joe/project-portfolio/internal/git"
	"github.com/mvp-joe/project-portfolio/internal/scanner"
)

// Sentinel bucket names.
const (
	Unattributed = "<unattributed>"
	UnknownName  = "<unknown>"
)

// Bucket holds the files attributed to one canonical contributor.
type Bucket struct {
	Name              string   `json:"canonical_name"`
	FilesOwned        []string `json:"files_owned"`
	FilesFromMetadata []string `json:"files_from_metadata"`
	FilesFromText     []string `json:"files_from_text"`
}

// FileCount is the number of owned files.
func (b *Bucket) FileCount() int {
	return len(b.FilesOwned)
}

func newBucket(name string) *Bucket {
	return &Bucket{
		Name:              name,
		FilesOwned:        []string{},
		FilesFromMetadata: []string{},
		FilesFromText:     []string{},
	}
}

// Attribution maps canonical names to buckets. Every attributable file is
// in exactly one bucket.
type Attribution struct {
	Mode    Mode
	Buckets map[string]*Bucket
	// Tracked is the number of non-ignored tracked files in git mode.
	Tracked int
}

// Names returns bucket names in sorted order, the sentinel last.
func (a *Attribution) Names() []string {
	var names []string
	for name := range a.Buckets {
		if name != Unattributed {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := a.Buckets[Unattributed]; ok {
		names = append(names, Unattributed)
	}
	return names
}

// TotalFiles sums file counts across all buckets, the sentinel included.
func (a *Attribution) TotalFiles() int {
	total := 0
	for _, b := range a.Buckets {
		total += b.FileCount()
	}
	return total
}

// PercentBase is the denominator for contribution percentages: the tracked
// file count in git mode, every attributed file otherwise.
func (a *Attribution) PercentBase() int {
	if a.Mode == ModeGit && a.Tracked > 0 {
		return a.Tracked
	}
	return a.TotalFiles()
}

func (a *Attribution) bucket(name string) *Bucket {
	b, ok := a.Buckets[name]
	if !ok {
		b = newBucket(name)
		a.Buckets[name] = b
	}
	return b
}

// finalize sorts and deduplicates every bucket's file lists.
func (a *Attribution) finalize() {
	for _, b := range a.Buckets {
		b.FilesOwned = sortedUnique(b.FilesOwned)
		b.FilesFromMetadata = sortedUnique(b.FilesFromMetadata)
		b.FilesFromText = sortedUnique(b.FilesFromText)
	}
}

// Attributor assigns files to contributors.
type Attributor struct {
	git       git.Operations
	isIgnored func(relPath string) bool
}

// NewAttributor creates an Attributor. isIgnored filters tracked files with
// the same rules the scanner applies; nil keeps every tracked file.
func NewAttributor(ops git.Operations, isIgnored func(relPath string) bool) *Attributor {
	if isIgnored == nil {
		isIgnored = func(string) bool { return false }
	}
	return &Attributor{git: ops, isIgnored: isIgnored}
}

// AttributeLocal assigns files by filesystem owner, then moves unattributed
// files whose names mention a known contributor.
func (a *Attributor) AttributeLocal(files []scanner.FileEntry, textNames []string) *Attribution {
	out := &Attribution{Mode: ModeLocal, Buckets: make(map[string]*Bucket)}
	out.bucket(Unattributed)

	canonical := canonicalOwners(DistinctOwners(files), textNames)
	for _, name := range canonical {
		out.bucket(name)
	}
	for _, name := range textNames {
		out.bucket(name)
	}

	for _, f := range files {
		owner := f.Owner
		if name, ok := canonical[owner]; ok {
			b := out.bucket(name)
			b.FilesOwned = append(b.FilesOwned, f.RelPath)
			b.FilesFromMetadata = append(b.FilesFromMetadata, f.RelPath)
			continue
		}
		u := out.Buckets[Unattributed]
		u.FilesOwned = append(u.FilesOwned, f.RelPath)
	}

	moveByFilename(out)
	out.finalize()
	return out
}

// canonicalOwners maps each owner to a contributor name from text files when
// one matches, else to the first earlier owner it matches, else to itself.
func canonicalOwners(owners, textNames []string) map[string]string {
	canonical := make(map[string]string, len(owners))
	var seen []string
	for _, owner := range owners {
		name := owner
		if match, ok := firstMatch(owner, textNames); ok {
			name = match
		} else if match, ok := firstMatch(owner, seen); ok {
			name = match
		}
		canonical[owner] = name
		seen = append(seen, name)
	}
	return canonical
}

func firstMatch(name string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if NameMatches(name, c) {
			return c, true
		}
	}
	return "", false
}

// moveByFilename moves unattributed files whose lowercased base name contains
// a token (longer than two characters) of a contributor name.
func moveByFilename(out *Attribution) {
	u := out.Buckets[Unattributed]
	names := out.Names()

	var keep []string
	for _, rel := range u.FilesOwned {
		base := strings.ToLower(path.Base(rel))
		target := ""
		for _, name := range names {
			if name == Unattributed {
				continue
			}
			for _, tok := range tokens(name) {
				if len([]rune(tok)) > 2 && strings.Contains(base, tok) {
					target = name
					break
				}
			}
			if target != "" {
				break
			}
		}
		if target == "" {
			keep = append(keep, rel)
			continue
		}
		b := out.Buckets[target]
		b.FilesOwned = append(b.FilesOwned, rel)
		b.FilesFromText = append(b.FilesFromText, rel)
	}
	u.FilesOwned = keep
	if u.FilesOwned == nil {
		u.FilesOwned = []string{}
	}
}

// AttributeGit assigns each tracked file to the canonical identity of the
// author of its most recent commit. Files on disk but outside the git tree
// are unattributed. Errors wrap git.ErrGitUnavailable.
func (a *Attributor) AttributeGit(ctx context.Context, root string, files []scanner.FileEntry, textNames []string) (*Attribution, error) {
	tracked, err := a.git.TrackedFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	last, err := a.git.LastAuthors(ctx, root)
	if err != nil {
		return nil, err
	}

	out := &Attribution{Mode: ModeGit, Buckets: make(map[string]*Bucket)}
	u := out.bucket(Unattributed)

	resolver := newIdentityResolver(textNames, canonicalOwners(DistinctOwners(files), textNames))

	trackedSet := make(map[string]bool, len(tracked))
	sort.Strings(tracked)
	for _, rel := range tracked {
		if a.isIgnored(rel) {
			continue
		}
		trackedSet[rel] = true

		author, ok := last[rel]
		name := UnknownName
		if ok {
			name = resolver.resolve(author)
		}
		// Files whose latest commit has no author stay unattributed.
		if name == UnknownName {
			u.FilesOwned = append(u.FilesOwned, rel)
			continue
		}
		b := out.bucket(name)
		b.FilesOwned = append(b.FilesOwned, rel)
		b.FilesFromMetadata = append(b.FilesFromMetadata, rel)
	}

	for _, f := range files {
		if !trackedSet[f.RelPath] {
			u.FilesOwned = append(u.FilesOwned, f.RelPath)
		}
	}

	out.Tracked = len(trackedSet)
	out.finalize()
	return out, nil
}

// SingleBucket attributes every file to one contributor, for individual projects.
func SingleBucket(mode Mode, name string, files []string) *Attribution {
	out := &Attribution{Mode: mode, Buckets: make(map[string]*Bucket)}
	b := out.bucket(name)
	b.FilesOwned = append(b.FilesOwned, files...)
	b.FilesFromMetadata = append(b.FilesFromMetadata, files...)
	out.finalize()
	return out
}

// identityResolver canonicalizes commit authors. Results are cached by email
// and by name for the lifetime of one attribution run.
type identityResolver struct {
	textNames []string
	owners    map[string]string
	byEmail   map[string]string
	byName    map[string]string
	seenNames []string
}

func newIdentityResolver(textNames []string, owners map[string]string) *identityResolver {
	return &identityResolver{
		textNames: textNames,
		owners:    owners,
		byEmail:   make(map[string]string),
		byName:    make(map[string]string),
	}
}

func (r *identityResolver) resolve(author git.Author) string {
	name := strings.TrimSpace(author.Name)
	email := strings.ToLower(strings.TrimSpace(author.Email))

	if email != "" {
		if c, ok := r.byEmail[email]; ok {
			return c
		}
	}
	if name != "" {
		if c, ok := r.byName[name]; ok && email == "" {
			return c
		}
	}

	canonical := r.canonicalize(name, email)
	if canonical == UnknownName {
		return canonical
	}
	if email != "" {
		r.byEmail[email] = canonical
	}
	if name != "" {
		r.byName[name] = canonical
	}
	if _, seen := firstMatch(canonical, r.seenNames); !seen {
		r.seenNames = append(r.seenNames, canonical)
	}
	return canonical
}

func (r *identityResolver) canonicalize(name, email string) string {
	local := emailLocalPart(email)

	// 1. Name matches a CONTRIBUTORS entry.
	if name != "" {
		if c, ok := firstMatch(name, r.textNames); ok {
			return c
		}
	}

	// 2. Email local part matches a CONTRIBUTORS entry.
	if local != "" {
		needle := squash(local)
		for _, c := range r.textNames {
			hay := squash(c)
			if len(needle) >= 3 && len(hay) >= 3 && (strings.Contains(hay, needle) || strings.Contains(needle, hay)) {
				return c
			}
		}
	}

	// 3. Name matches a filesystem owner.
	if name != "" {
		owners := make([]string, 0, len(r.owners))
		for owner := range r.owners {
			owners = append(owners, owner)
		}
		sort.Strings(owners)
		if owner, ok := firstMatch(name, owners); ok {
			return r.owners[owner]
		}
	}

	// 4. Name derived from the email local part.
	if local != "" {
		return titleCase(strings.NewReplacer(".", " ", "_", " ").Replace(local))
	}

	// 5. Name compared against earlier identities.
	if name != "" {
		if c, ok := firstMatch(name, r.seenNames); ok {
			return c
		}
		return name
	}

	return UnknownName
}

// emailLocalPart returns the part before '@' with any +tag removed.
func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local, _, _ = strings.Cut(local, "+")
	return strings.TrimSpace(local)
}

// squash lowercases s and drops separators so "j.smith" and "J Smith" compare equal.
func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '_' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func sortedUnique(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
