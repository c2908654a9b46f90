package scanner

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrInputNotFound indicates the analysis root is missing or not a directory.
	ErrInputNotFound = errors.New("input path not found")

	// ErrEmptyProject indicates no timestamped files were found under the root.
	ErrEmptyProject = errors.New("empty project")
)

// NodeKind distinguishes directories from files in the hierarchy.
type NodeKind string

const (
	KindDir  NodeKind = "DIR"
	KindFile NodeKind = "FILE"
)

// Names used for placeholder nodes that report a traversal problem.
const (
	NameNoAccess      = "No Access"
	NameNotFound      = "Not Found"
	NameNotADirectory = "Not a Directory"
)

// UnknownOwner is reported when the owning user of a file cannot be resolved.
const UnknownOwner = "Unknown"

// Timestamp is a point in time that serializes as RFC3339 or "N/A" when unknown.
type Timestamp struct {
	time.Time
}

// MarshalJSON renders unknown timestamps as "N/A".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("N/A")
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts RFC3339 strings and "N/A".
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "N/A" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// FileNode is one entry of the scanned hierarchy.
// Directories carry Children; files carry size, timestamps and owner.
type FileNode struct {
	Name      string      `json:"name"`
	Kind      NodeKind    `json:"type"`
	SizeBytes *int64      `json:"size_bytes,omitempty"`
	Created   *Timestamp  `json:"created,omitempty"`
	Modified  *Timestamp  `json:"modified,omitempty"`
	Owner     string      `json:"owner,omitempty"`
	Children  []*FileNode `json:"children,omitempty"`
}

// FileEntry is the flat view of one scanned file, used by downstream analyzers.
type FileEntry struct {
	RelPath  string // POSIX-style, relative to the scan root
	AbsPath  string
	Size     int64
	Created  time.Time
	Modified time.Time
	Owner    string
}

// Snapshot is the result of one scan: the tree plus every non-ignored file.
type Snapshot struct {
	Root  *FileNode
	Files []FileEntry
}
