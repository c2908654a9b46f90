package oop

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/project-portfolio/internal/scanner"
)

// Language names accepted by Config.Languages.
const (
	LangPython     = "python"
	LangJava       = "java"
	LangC          = "c"
	LangTypeScript = "typescript"
	LangJavaScript = "javascript"
	LangRuby       = "ruby"
	LangPHP        = "php"
	LangRust       = "rust"
)

// SupportedLanguages lists every language with a sub-analyzer.
var SupportedLanguages = []string{LangC, LangJava, LangJavaScript, LangPHP, LangPython, LangRuby, LangRust, LangTypeScript}

const reportCacheSize = 10_000

// fileAnalyzer is implemented by every language sub-analyzer.
type fileAnalyzer interface {
	Analyze(filePath string, source []byte) *FileReport
}

// ProgressReporter receives per-file analysis callbacks.
type ProgressReporter interface {
	OnAnalysisStart(totalFiles int)
	OnFileAnalyzed(filePath string)
	OnAnalysisComplete(filesAnalyzed int)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnAnalysisStart(totalFiles int)       {}
func (n *NoOpProgressReporter) OnFileAnalyzed(filePath string)       {}
func (n *NoOpProgressReporter) OnAnalysisComplete(filesAnalyzed int) {}

// Analyzer dispatches files to language sub-analyzers by extension.
type Analyzer struct {
	byExt    map[string]fileAnalyzer
	langs    map[string]string // extension -> language name
	cache    otter.Cache[string, *FileReport]
	progress ProgressReporter
	verbose  bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.progress = p
		}
	}
}

// WithVerbose logs each analyzed file.
func WithVerbose(verbose bool) Option {
	return func(a *Analyzer) { a.verbose = verbose }
}

// NewAnalyzer creates an Analyzer for the given languages. An empty list
// enables every supported language.
func NewAnalyzer(languages []string, opts ...Option) (*Analyzer, error) {
	if len(languages) == 0 {
		languages = SupportedLanguages
	}

	cache, err := otter.MustBuilder[string, *FileReport](reportCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}

	a := &Analyzer{
		byExt:    make(map[string]fileAnalyzer),
		langs:    make(map[string]string),
		cache:    cache,
		progress: &NoOpProgressReporter{},
	}

	for _, lang := range languages {
		switch strings.ToLower(lang) {
		case LangPython:
			a.register(LangPython, newPythonAnalyzer(), ".py")
		case LangJava:
			a.register(LangJava, newJavaAnalyzer(), ".java")
		case LangC:
			a.register(LangC, newCAnalyzer(), ".c", ".h")
		case LangTypeScript:
			a.register(LangTypeScript, newTypeScriptAnalyzer(), ".ts")
			a.register(LangTypeScript, newTSXAnalyzer("TypeScript"), ".tsx")
		case LangJavaScript:
			a.register(LangJavaScript, newTSXAnalyzer("JavaScript"), ".js", ".jsx", ".mjs", ".cjs")
		case LangRuby:
			a.register(LangRuby, newRubyAnalyzer(), ".rb")
		case LangPHP:
			a.register(LangPHP, newPHPAnalyzer(), ".php")
		case LangRust:
			a.register(LangRust, newRustAnalyzer(), ".rs")
		default:
			cache.Close()
			return nil, fmt.Errorf("unsupported OOP language: %q", lang)
		}
	}

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Analyzer) register(lang string, fa fileAnalyzer, exts ...string) {
	for _, ext := range exts {
		a.byExt[ext] = fa
		a.langs[ext] = lang
	}
}

// Close releases the report cache.
func (a *Analyzer) Close() {
	a.cache.Close()
}

// Supports reports whether relPath has an enabled sub-analyzer.
func (a *Analyzer) Supports(relPath string) bool {
	_, ok := a.byExt[strings.ToLower(filepath.Ext(relPath))]
	return ok
}

// AnalyzeSource analyzes in-memory source. relPath selects the sub-analyzer
// and becomes the report's file path.
func (a *Analyzer) AnalyzeSource(relPath string, source []byte) (*FileReport, bool) {
	fa, ok := a.byExt[strings.ToLower(filepath.Ext(relPath))]
	if !ok {
		return nil, false
	}

	sum := sha256.Sum256(source)
	key := a.langs[strings.ToLower(filepath.Ext(relPath))] + ":" + hex.EncodeToString(sum[:])
	if cached, ok := a.cache.Get(key); ok {
		return cached.withPath(relPath), true
	}

	report := fa.Analyze(relPath, source)
	a.cache.Set(key, report.withPath(relPath))
	return report, true
}

// AnalyzeFiles analyzes every supported file. Unreadable files are skipped
// with a warning; reports are returned sorted by file path.
func (a *Analyzer) AnalyzeFiles(files []scanner.FileEntry) []*FileReport {
	var targets []scanner.FileEntry
	for _, f := range files {
		if a.Supports(f.RelPath) {
			targets = append(targets, f)
		}
	}

	a.progress.OnAnalysisStart(len(targets))

	reports := make([]*FileReport, 0, len(targets))
	for _, f := range targets {
		source, err := os.ReadFile(f.AbsPath)
		if err != nil {
			log.Printf("Warning: skipping unreadable file %s: %v", f.RelPath, err)
			a.progress.OnFileAnalyzed(f.RelPath)
			continue
		}

		report, _ := a.AnalyzeSource(f.RelPath, source)
		if a.verbose {
			log.Printf("  analyzed %s (%s, %d classes)", f.RelPath, report.Language, len(report.Classes))
		}
		reports = append(reports, report)
		a.progress.OnFileAnalyzed(f.RelPath)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].FilePath < reports[j].FilePath
	})

	a.progress.OnAnalysisComplete(len(reports))
	return reports
}
