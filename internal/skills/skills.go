package skills

import (
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mvp-joe/project-portfolio/internal/scanner"
	"github.com/mvp-joe/project-portfolio/internal/stack"
)

// Skill labels derived from packages and framework groups.
const (
	DataAnalysis      = "Data Analysis"
	DataVisualization = "Data Visualization"
	MachineLearning   = "Machine Learning"
	Testing           = "Testing"
	WebDevelopment    = "Web Development"
	DevOps            = "DevOps"
	InfraAsCode       = "Infrastructure as Code"
)

var packageSkills = map[string]string{
	"numpy":        DataAnalysis,
	"pandas":       DataAnalysis,
	"polars":       DataAnalysis,
	"matplotlib":   DataVisualization,
	"seaborn":      DataVisualization,
	"plotly":       DataVisualization,
	"scikit-learn": MachineLearning,
	"sklearn":      MachineLearning,
	"tensorflow":   MachineLearning,
	"keras":        MachineLearning,
	"torch":        MachineLearning,
	"pytorch":      MachineLearning,
	"pytest":       Testing,
	"unittest":     Testing,
	"jest":         Testing,
	"cypress":      Testing,
}

var frameworkSkills = map[string]string{
	"Flask":          WebDevelopment,
	"Django":         WebDevelopment,
	"FastAPI":        WebDevelopment,
	"Quart":          WebDevelopment,
	"React":          WebDevelopment,
	"Vue.js":         WebDevelopment,
	"Angular":        WebDevelopment,
	"Svelte":         WebDevelopment,
	"Next.js":        WebDevelopment,
	"Nuxt.js":        WebDevelopment,
	"Express":        WebDevelopment,
	"NestJS":         WebDevelopment,
	"Koa":            WebDevelopment,
	"Dash":           DataVisualization,
	"Streamlit":      DataVisualization,
	"Docker":         DevOps,
	"Docker Compose": DevOps,
	"Terraform":      InfraAsCode,
}

// Infer combines the detected stack with packages found in dependency files
// and returns sorted, deduplicated skill labels.
func Infer(detected stack.Result, files []scanner.FileEntry) []string {
	labels := make(map[string]bool)

	for _, lang := range detected.Languages {
		labels[lang] = true
	}
	for _, fw := range detected.Frameworks {
		labels[fw] = true
		if skill, ok := frameworkSkills[fw]; ok {
			labels[skill] = true
		}
	}
	for _, pkg := range ExtractPackages(files) {
		if skill, ok := packageSkills[pkg]; ok {
			labels[skill] = true
		}
	}

	out := make([]string, 0, len(labels))
	for label := range labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// NonIdentity returns the skills that are not also a language or framework.
func NonIdentity(skills []string, detected stack.Result) []string {
	identity := make(map[string]bool)
	for _, l := range detected.Languages {
		identity[l] = true
	}
	for _, f := range detected.Frameworks {
		identity[f] = true
	}
	var out []string
	for _, s := range skills {
		if !identity[s] {
			out = append(out, s)
		}
	}
	return out
}

// ExtractPackages reads every dependency file among files and returns the
// normalized package names they declare, sorted and deduplicated.
func ExtractPackages(files []scanner.FileEntry) []string {
	pkgs := make(map[string]bool)

	for _, f := range files {
		base := path.Base(f.RelPath)
		parse, ok := dependencyParsers[base]
		if !ok {
			continue
		}

		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			log.Printf("Warning: skipping unreadable file %s: %v", f.RelPath, err)
			continue
		}

		names, err := parse(content)
		if err != nil {
			log.Printf("Warning: skipping malformed dependency file %s: %v", f.RelPath, err)
			continue
		}
		for _, name := range names {
			if n := normalizePackage(name); n != "" {
				pkgs[n] = true
			}
		}
	}

	out := make([]string, 0, len(pkgs))
	for p := range pkgs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

var dependencyParsers = map[string]func([]byte) ([]string, error){
	"requirements.txt": func(b []byte) ([]string, error) { return ParseRequirements(string(b)), nil },
	"pyproject.toml":   ParsePyproject,
	"poetry.lock":      ParseLockfile,
	"pdm.lock":         ParseLockfile,
	"package.json":     parseManifestNames,
	"composer.json":    parseManifestNames,
}

func parseManifestNames(b []byte) ([]string, error) {
	m, err := stack.ParsePackageManifest(b)
	if err != nil {
		return nil, err
	}
	return m.DependencyNames(), nil
}

// normalizePackage lowercases a package name and reduces scoped names
// ("@testing-library/jest", "phpunit/phpunit") to their last segment.
func normalizePackage(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "_", "-")
}
