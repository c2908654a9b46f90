package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-portfolio/internal/analyzer"
	"github.com/mvp-joe/project-portfolio/internal/archive"
	"github.com/mvp-joe/project-portfolio/internal/git"
	"github.com/mvp-joe/project-portfolio/internal/insight"
	"github.com/mvp-joe/project-portfolio/internal/scanner"
)

// Test Plan for Analyze Command:
// - executeAnalyze prints the portfolio page, appends to the log and archives the output
// - --save-output writes the full output including hierarchy and contribution summary
// - --no-store leaves the log and archive untouched
// - an empty archive_db disables archiving but still records the insight
// - a missing root returns ErrInputNotFound and stores nothing
// - a single-author git repository is an individual project attributed from git

var flaskProject = map[string]string{
	"app.py":           "print('hello')\n",
	"requirements.txt": "Flask==2.3.2\nrequests==2.32.0\n",
}

func TestExecuteAnalyze_StoresAndArchives(t *testing.T) {
	applyColor(false)
	ctx := context.Background()
	cfg := newTestConfig(t)
	root := writeProject(t, "storefront", flaskProject)
	saved := filepath.Join(t.TempDir(), "out.json")

	var buf bytes.Buffer
	out, err := executeAnalyze(ctx, &buf, cfg, root, analyzeOptions{saveOutput: saved, quiet: true},
		analyzer.WithGit(git.NewUnavailableMock()))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "storefront")
	assert.Contains(t, buf.String(), "Built storefront")

	records, err := insight.NewStore(cfg.InsightLogPath()).Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, out.ID, records[0].ID)
	assert.Equal(t, []string{"Flask"}, records[0].Frameworks)

	arch, err := archive.Open(cfg.ArchivePath())
	require.NoError(t, err)
	defer arch.Close()
	archived, err := arch.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "storefront", archived.ProjectName)
	require.NotNil(t, archived.Hierarchy)

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "hierarchy")
	assert.Contains(t, raw, "contribution_summary")
	assert.Equal(t, out.ID, raw["id"])
}

func TestExecuteAnalyze_NoStore(t *testing.T) {
	applyColor(false)
	cfg := newTestConfig(t)
	root := writeProject(t, "scratch", flaskProject)

	var buf bytes.Buffer
	_, err := executeAnalyze(context.Background(), &buf, cfg, root, analyzeOptions{noStore: true, quiet: true},
		analyzer.WithGit(git.NewUnavailableMock()))
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String())

	_, err = os.Stat(cfg.InsightLogPath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.ArchivePath())
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteAnalyze_ArchiveDisabled(t *testing.T) {
	applyColor(false)
	cfg := newTestConfig(t)
	cfg.Storage.ArchiveDB = ""
	root := writeProject(t, "notes", flaskProject)

	var buf bytes.Buffer
	_, err := executeAnalyze(context.Background(), &buf, cfg, root, analyzeOptions{quiet: true},
		analyzer.WithGit(git.NewUnavailableMock()))
	require.NoError(t, err)

	records, err := insight.NewStore(cfg.InsightLogPath()).Load()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	entries, err := os.ReadDir(cfg.Storage.Dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "analyses.db", e.Name())
	}
}

func TestExecuteAnalyze_MissingRoot(t *testing.T) {
	cfg := newTestConfig(t)

	var buf bytes.Buffer
	_, err := executeAnalyze(context.Background(), &buf, cfg, filepath.Join(t.TempDir(), "missing"),
		analyzeOptions{quiet: true}, analyzer.WithGit(git.NewUnavailableMock()))
	assert.True(t, errors.Is(err, scanner.ErrInputNotFound))

	_, err = os.Stat(cfg.InsightLogPath())
	assert.True(t, os.IsNotExist(err))
}

// Integration test against a real repository (NO t.Parallel()).
func TestExecuteAnalyze_GitIndividual(t *testing.T) {
	applyColor(false)
	cfg := newTestConfig(t)
	root := writeProject(t, "solo", flaskProject)
	initGitRepo(t, root)

	var buf bytes.Buffer
	out, err := executeAnalyze(context.Background(), &buf, cfg, root, analyzeOptions{quiet: true})
	require.NoError(t, err)

	assert.Equal(t, "individual", out.ProjectType)
	assert.Equal(t, "git", out.DetectionMode)
	require.Contains(t, out.Contributors, "Test User")
	assert.Equal(t, "100.00%", out.Contributors["Test User"].Percentage)
}
