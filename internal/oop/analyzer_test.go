package oop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-portfolio/internal/scanner"
)

type recordingReporter struct {
	total     int
	analyzed  []string
	completed int
}

func (r *recordingReporter) OnAnalysisStart(totalFiles int)       { r.total = totalFiles }
func (r *recordingReporter) OnFileAnalyzed(filePath string)       { r.analyzed = append(r.analyzed, filePath) }
func (r *recordingReporter) OnAnalysisComplete(filesAnalyzed int) { r.completed = filesAnalyzed }

func newTestAnalyzer(t *testing.T, languages []string, opts ...Option) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(languages, opts...)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewAnalyzer_Languages(t *testing.T) {
	t.Parallel()

	all := newTestAnalyzer(t, nil)
	for _, path := range []string{"a.py", "B.java", "c.c", "c.h", "d.ts", "e.tsx", "f.js", "g.jsx", "h.rb", "i.php", "j.rs"} {
		assert.True(t, all.Supports(path), path)
	}
	assert.False(t, all.Supports("main.go"))
	assert.False(t, all.Supports("README.md"))

	pyOnly := newTestAnalyzer(t, []string{"Python"})
	assert.True(t, pyOnly.Supports("a.py"))
	assert.False(t, pyOnly.Supports("B.java"))

	_, err := NewAnalyzer([]string{"cobol"})
	assert.Error(t, err)
}

func TestAnalyzer_AnalyzeSourceUsesCacheByContent(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(t, nil)
	src := []byte("class A:\n    def run(self):\n        pass\n")

	first, ok := a.AnalyzeSource("one/a.py", src)
	require.True(t, ok)
	second, ok := a.AnalyzeSource("two/b.py", src)
	require.True(t, ok)

	assert.Equal(t, "one/a.py", first.FilePath)
	assert.Equal(t, "two/b.py", second.FilePath)
	require.Len(t, second.Classes, 1)
	assert.Equal(t, "two/b.py", second.Classes[0].FilePath)

	// Mutating one report must not leak into later cache hits.
	second.Classes[0].Methods[0] = "changed"
	third, _ := a.AnalyzeSource("three/c.py", src)
	assert.Equal(t, []string{"run"}, third.Classes[0].Methods)

	_, ok = a.AnalyzeSource("notes.txt", src)
	assert.False(t, ok)
}

func TestAnalyzer_AnalyzeFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write := func(rel, content string) scanner.FileEntry {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
		return scanner.FileEntry{RelPath: rel, AbsPath: abs}
	}

	files := []scanner.FileEntry{
		write("pkg/z.py", "class Z:\n    pass\n"),
		write("Main.java", "class Main {}\n"),
		write("README.md", "# readme\n"),
		{RelPath: "gone.py", AbsPath: filepath.Join(root, "gone.py")},
	}

	progress := &recordingReporter{}
	a := newTestAnalyzer(t, nil, WithProgress(progress))

	reports := a.AnalyzeFiles(files)

	require.Len(t, reports, 2)
	assert.Equal(t, "Main.java", reports[0].FilePath)
	assert.Equal(t, "pkg/z.py", reports[1].FilePath)

	assert.Equal(t, 3, progress.total)
	assert.Len(t, progress.analyzed, 3)
	assert.Equal(t, 2, progress.completed)
}
