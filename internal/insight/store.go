package insight

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrLogCorrupt indicates the insight log could not be parsed. Append
// recovers from it by moving the file aside; Load returns it wrapped.
var ErrLogCorrupt = errors.New("insight log corrupt")

// AppendResult describes a completed Append.
type AppendResult struct {
	// Records is the number of records in the log after the append.
	Records int
	// Backup is the path the corrupt log was moved to, if any.
	Backup string
	// Recovered wraps ErrLogCorrupt when the previous log was discarded.
	Recovered error
}

// Store is the append-only JSON log of insights. A Store is not safe for
// concurrent mutation; a single process owns the log.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a Store backed by the JSON array at path. The file is
// created on the first Append.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the log file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every record in insertion order. A missing or blank log is
// empty. A log that does not parse returns an error wrapping ErrLogCorrupt.
func (s *Store) Load() ([]Insight, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Insight{}, nil
		}
		return nil, fmt.Errorf("failed to read insight log: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Insight{}, nil
	}

	var records []Insight
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLogCorrupt, s.path, err)
	}
	if records == nil {
		records = []Insight{}
	}
	return records, nil
}

// Append adds rec to the end of the log and rewrites the file atomically.
// A corrupt log is moved to "<log>.corrupt-<timestamp>" and replaced by a
// log holding only rec. An empty ID is filled with a new UUID.
func (s *Store) Append(rec Insight) (*AppendResult, error) {
	result := &AppendResult{}

	records, err := s.Load()
	if errors.Is(err, ErrLogCorrupt) {
		backup, moveErr := s.moveAside()
		if moveErr != nil {
			return nil, moveErr
		}
		log.Printf("Warning: %v; moved to %s", err, backup)
		result.Backup = backup
		result.Recovered = err
		records = []Insight{}
	} else if err != nil {
		return nil, err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.normalize()
	records = append(records, rec)

	if err := s.write(records); err != nil {
		return nil, err
	}
	result.Records = len(records)
	return result, nil
}

// List returns the records that pass filter, ordered by analyzed_at and
// then by id.
func (s *Store) List(filter Filter) ([]Insight, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	return Select(records, filter), nil
}

// Rank lists records matching filter and orders them by composite score as
// of the current time. See Rank.
func (s *Store) Rank(filter Filter, contributor string, topN *int) ([]Ranked, error) {
	records, err := s.List(filter)
	if err != nil {
		return nil, err
	}
	return Rank(records, contributor, topN, s.now()), nil
}

// Select filters records and sorts them chronologically, ties broken by id.
func Select(records []Insight, filter Filter) []Insight {
	out := make([]Insight, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AnalyzedAt.Equal(out[j].AnalyzedAt) {
			return out[i].AnalyzedAt.Before(out[j].AnalyzedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) moveAside() (string, error) {
	backup := s.path + ".corrupt-" + s.now().UTC().Format("20060102T150405.000000000Z")
	if err := os.Rename(s.path, backup); err != nil {
		return "", fmt.Errorf("failed to move corrupt insight log: %w", err)
	}
	return backup, nil
}

// write replaces the log with records via a temporary sibling and rename.
func (s *Store) write(records []Insight) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode insight log: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create insight log directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary log: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary log: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize insight log: %w", err)
	}
	return nil
}
