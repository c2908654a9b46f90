package skills

import (
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// requirementName captures the distribution name at the start of a
// requirements line, before extras, specifiers or markers.
var requirementName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)

// ParseRequirements extracts package names from requirements.txt content.
// Comments, pip options (-r, -e, --index-url) and blank lines are skipped;
// extras and version specifiers are stripped.
func ParseRequirements(content string) []string {
	var names []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if m := requirementName.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParsePyproject extracts PEP 621 and Poetry dependency names.
func ParsePyproject(content []byte) ([]string, error) {
	var doc pyproject
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	var names []string
	specs := append([]string{}, doc.Project.Dependencies...)
	for _, group := range doc.Project.OptionalDependencies {
		specs = append(specs, group...)
	}
	names = append(names, ParseRequirements(strings.Join(specs, "\n"))...)

	poetry := doc.Tool.Poetry
	for name := range poetry.Dependencies {
		if name != "python" {
			names = append(names, name)
		}
	}
	for name := range poetry.DevDependencies {
		names = append(names, name)
	}
	for _, group := range poetry.Group {
		for name := range group.Dependencies {
			names = append(names, name)
		}
	}
	return names, nil
}

type lockfile struct {
	Package []struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// ParseLockfile extracts [[package]] names from poetry.lock and pdm.lock.
func ParseLockfile(content []byte) ([]string, error) {
	var doc lockfile
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Package))
	for _, p := range doc.Package {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names, nil
}
