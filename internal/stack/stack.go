package stack

import (
	"encoding/json"
	"log"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/mvp-joe/project-portfolio/internal/scanner"
)

// Result is the detected technology stack of a project.
type Result struct {
	Languages        []string            `json:"languages"`
	Frameworks       []string            `json:"frameworks"`
	FrameworkSources map[string][]string `json:"framework_sources"`
}

// languageByExt maps lowercase file extensions to language names.
var languageByExt = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".cs":    "C#",
	".rb":    "Ruby",
	".php":   "PHP",
	".go":    "Go",
	".rs":    "Rust",
	".swift": "Swift",
	".kt":    "Kotlin",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".hpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
}

// LanguageForPath returns the language of a file by extension, or "".
func LanguageForPath(p string) string {
	return languageByExt[strings.ToLower(path.Ext(p))]
}

// pythonManifests are scanned for Python framework tokens.
var pythonManifests = map[string]bool{
	"requirements.txt": true,
	"pyproject.toml":   true,
	"poetry.lock":      true,
	"pdm.lock":         true,
}

type frameworkToken struct {
	re        *regexp.Regexp
	framework string
}

// pythonFrameworks match whole package names, so "dash" does not fire on "dashboard".
var pythonFrameworks = []frameworkToken{
	{tokenPattern("flask"), "Flask"},
	{tokenPattern("django"), "Django"},
	{tokenPattern("fastapi"), "FastAPI"},
	{tokenPattern("quart"), "Quart"},
	{tokenPattern("streamlit"), "Streamlit"},
	{tokenPattern("dash"), "Dash"},
}

func tokenPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^a-z0-9_])` + regexp.QuoteMeta(token) + `([^a-z0-9_]|$)`)
}

// npmFrameworks maps exact package.json dependency keys to frameworks.
var npmFrameworks = map[string]string{
	"react":         "React",
	"next":          "Next.js",
	"vue":           "Vue.js",
	"nuxt":          "Nuxt.js",
	"angular":       "Angular",
	"@angular/core": "Angular",
	"svelte":        "Svelte",
	"gatsby":        "Gatsby",
	"express":       "Express",
}

// Detect runs both passes over the scanned files: extensions for languages,
// then manifest contents and marker files for frameworks.
func Detect(files []scanner.FileEntry) Result {
	languages := make(map[string]bool)
	sources := make(map[string]map[string]bool)

	record := func(framework, relPath string) {
		if sources[framework] == nil {
			sources[framework] = make(map[string]bool)
		}
		sources[framework][relPath] = true
	}

	for _, f := range files {
		if lang := LanguageForPath(f.RelPath); lang != "" {
			languages[lang] = true
		}
	}

	for _, f := range files {
		base := path.Base(f.RelPath)

		switch {
		case base == "Dockerfile":
			record("Docker", f.RelPath)
		case base == "docker-compose.yml" || base == "docker-compose.yaml":
			record("Docker Compose", f.RelPath)
		case strings.HasSuffix(base, ".tf"):
			record("Terraform", f.RelPath)
		}

		if !pythonManifests[base] && base != "package.json" && base != "composer.json" {
			continue
		}

		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			log.Printf("Warning: skipping unreadable file %s: %v", f.RelPath, err)
			continue
		}

		switch {
		case pythonManifests[base]:
			for _, tok := range pythonFrameworks {
				if tok.re.Match(content) {
					record(tok.framework, f.RelPath)
				}
			}
		case base == "package.json":
			for _, fw := range npmManifestFrameworks(content, f.RelPath) {
				record(fw, f.RelPath)
			}
		case base == "composer.json":
			if strings.Contains(strings.ToLower(string(content)), "laravel") {
				record("Laravel", f.RelPath)
			}
		}
	}

	result := Result{
		Languages:        sortedKeys(languages),
		Frameworks:       make([]string, 0, len(sources)),
		FrameworkSources: make(map[string][]string, len(sources)),
	}
	for fw, paths := range sources {
		result.Frameworks = append(result.Frameworks, fw)
		result.FrameworkSources[fw] = sortedKeys(paths)
	}
	sort.Strings(result.Frameworks)
	return result
}

// PackageManifest is the subset of package.json and composer.json we read.
type PackageManifest struct {
	Dependencies    map[string]json.RawMessage `json:"dependencies"`
	DevDependencies map[string]json.RawMessage `json:"devDependencies"`
	Require         map[string]json.RawMessage `json:"require"`
	RequireDev      map[string]json.RawMessage `json:"require-dev"`
}

// ParsePackageManifest decodes a package.json or composer.json document.
func ParsePackageManifest(content []byte) (*PackageManifest, error) {
	var m PackageManifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DependencyNames returns every declared dependency key, sorted.
func (m *PackageManifest) DependencyNames() []string {
	names := make(map[string]bool)
	for _, deps := range []map[string]json.RawMessage{m.Dependencies, m.DevDependencies, m.Require, m.RequireDev} {
		for name := range deps {
			names[name] = true
		}
	}
	return sortedKeys(names)
}

func npmManifestFrameworks(content []byte, relPath string) []string {
	m, err := ParsePackageManifest(content)
	if err != nil {
		log.Printf("Warning: skipping malformed manifest %s: %v", relPath, err)
		return nil
	}

	var found []string
	for _, name := range m.DependencyNames() {
		if fw, ok := npmFrameworks[name]; ok {
			found = append(found, fw)
		}
	}
	return found
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
