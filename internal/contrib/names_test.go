package contrib

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"case-folded equality", "alice smith", "Alice  Smith", true},
		{"same first and last", "Alice B Smith", "Alice Smith", true},
		{"first initial and last", "A. Smith", "Alice Smith", true},
		{"different last", "Alice Smith", "Alice Jones", false},
		{"single tokens differ", "Alice", "Bob", false},
		{"two shared long tokens", "Maria Elena Garcia", "Garcia Maria", true},
		{"short shared tokens", "Li Wu Ng", "Ng Li Wu Zhao", false},
		{"single token in multi", "Garcia", "Maria Garcia", true},
		{"short single token", "Bob", "Bob Jones", false},
		{"apostrophe kept", "Sean O'Brien", "S O'Brien", true},
		{"empty", "", "Alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameMatches(tt.a, tt.b))
			assert.Equal(t, tt.want, NameMatches(tt.b, tt.a), "symmetric")
		})
	}
}

func TestExtractNames(t *testing.T) {
	t.Parallel()

	text := `Contributors:
- Alice Smith <alice@example.com>
* Bob Jones (maintainer)
Jean-Luc Picard
alice smith
Special thanks to Carol
`
	assert.Equal(t, []string{"Alice Smith", "Bob Jones", "Jean-Luc Picard", "Carol"}, ExtractNames(text))
}

func TestExtractNames_ReservedOnly(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractNames("AUTHORS\nContributors\n"))
}

func TestReadmeSections(t *testing.T) {
	t.Parallel()

	readme := `# My Project

Built by Someone Else for fun.

## Contributors

- Alice Smith
- Bob Jones

## License

MIT License
`
	names := ExtractNames(readmeSections(readme))
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, names)
}
