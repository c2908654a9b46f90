// Package archive keeps the full analysis output of every run in SQLite,
// one JSON payload per analysis.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-portfolio/internal/analyzer"
)

// ErrNotFound is returned by Get for an unknown analysis id.
var ErrNotFound = errors.New("analysis not found")

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS analyses (
	id           TEXT PRIMARY KEY,
	project_name TEXT NOT NULL,
	project_root TEXT NOT NULL,
	analyzed_at  TEXT NOT NULL,
	payload      TEXT NOT NULL
)`

// timeLayout is fixed width so analyzed_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const createProjectIndex = `CREATE INDEX IF NOT EXISTS idx_analyses_project ON analyses(project_name, analyzed_at)`

// Entry is the row metadata of one archived analysis.
type Entry struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	ProjectRoot string    `json:"project_root"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// Archive stores analysis outputs.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
// Use ":memory:" for a private in-memory archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range []string{createAnalysesTable, createProjectIndex} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create archive schema: %w", err)
		}
	}
	return tx.Commit()
}

// Save stores out under its insight id, replacing any earlier row with the same id.
func (a *Archive) Save(ctx context.Context, out *analyzer.Output) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode analysis %s: %w", out.ID, err)
	}

	_, err = sq.Insert("analyses").
		Columns("id", "project_name", "project_root", "analyzed_at", "payload").
		Values(out.ID, out.ProjectName, out.ProjectRoot, out.AnalyzedAt.UTC().Format(timeLayout), string(payload)).
		Options("OR REPLACE").
		RunWith(a.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to archive analysis %s: %w", out.ID, err)
	}
	return nil
}

// Get loads the analysis output stored under id.
func (a *Archive) Get(ctx context.Context, id string) (*analyzer.Output, error) {
	var payload string
	err := sq.Select("payload").
		From("analyses").
		Where(sq.Eq{"id": id}).
		RunWith(a.db).
		QueryRowContext(ctx).
		Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis %s: %w", id, err)
	}

	var out analyzer.Output
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", id, err)
	}
	return &out, nil
}

// ListByProject returns the analyses of one project, oldest first.
func (a *Archive) ListByProject(ctx context.Context, projectName string) ([]Entry, error) {
	return a.list(ctx, sq.Eq{"project_name": projectName})
}

// List returns every archived analysis, oldest first.
func (a *Archive) List(ctx context.Context) ([]Entry, error) {
	return a.list(ctx, nil)
}

func (a *Archive) list(ctx context.Context, where sq.Sqlizer) ([]Entry, error) {
	query := sq.Select("id", "project_name", "project_root", "analyzed_at").
		From("analyses").
		OrderBy("analyzed_at", "id")
	if where != nil {
		query = query.Where(where)
	}

	rows, err := query.RunWith(a.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var analyzedAt string
		if err := rows.Scan(&e.ID, &e.ProjectName, &e.ProjectRoot, &analyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		if e.AnalyzedAt, err = time.Parse(timeLayout, analyzedAt); err != nil {
			return nil, fmt.Errorf("invalid analyzed_at for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
