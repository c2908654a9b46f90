package git

import (
	"context"
	"fmt"
)

// MockOperations is a mock implementation of Operations for testing.
type MockOperations struct {
	Repository  bool
	AuthorList  []Author
	Tracked     []string
	Last        map[string]Author
	AuthorsErr  error
	TrackedErr  error
	LastErr     error
	AuthorCalls int
}

var _ Operations = (*MockOperations)(nil)

// NewMockOperations creates a mock for a repository with a single author.
func NewMockOperations() *MockOperations {
	return &MockOperations{
		Repository: true,
		AuthorList: []Author{{Name: "Test User", Email: "test@example.com"}},
		Tracked:    []string{"README.md"},
		Last: map[string]Author{
			"README.md": {Name: "Test User", Email: "test@example.com"},
		},
	}
}

// NewUnavailableMock returns a mock that behaves like a directory outside git.
func NewUnavailableMock() *MockOperations {
	err := fmt.Errorf("%w: not a git repository", ErrGitUnavailable)
	return &MockOperations{
		AuthorsErr: err,
		TrackedErr: err,
		LastErr:    err,
	}
}

func (m *MockOperations) IsRepository(ctx context.Context, root string) bool {
	return m.Repository
}

func (m *MockOperations) Authors(ctx context.Context, root string) ([]Author, error) {
	m.AuthorCalls++
	if m.AuthorsErr != nil {
		return nil, m.AuthorsErr
	}
	return m.AuthorList, nil
}

func (m *MockOperations) TrackedFiles(ctx context.Context, root string) ([]string, error) {
	if m.TrackedErr != nil {
		return nil, m.TrackedErr
	}
	return m.Tracked, nil
}

func (m *MockOperations) LastAuthors(ctx context.Context, root string) (map[string]Author, error) {
	if m.LastErr != nil {
		return nil, m.LastErr
	}
	return m.Last, nil
}

// String returns a human-readable representation of the mock state.
func (m *MockOperations) String() string {
	return fmt.Sprintf("MockOperations{repo=%t, authors=%d, tracked=%d}",
		m.Repository, len(m.AuthorList), len(m.Tracked))
}
