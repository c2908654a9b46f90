package contrib

import (
	"regexp"
	"strings"
	"unicode"
)

// namePattern matches runs of capitalized tokens such as "Alice Smith",
// "McDonald", "Jean-Luc Picard" or "O'Brien".
var namePattern = regexp.MustCompile(`\p{Lu}[\p{L}'’-]*(?:[ \t]+\p{Lu}[\p{L}'’-]*)*`)

var (
	emailPattern  = regexp.MustCompile(`<[^>]*>|\S+@\S+`)
	urlPattern    = regexp.MustCompile(`https?://\S+|\([^)]*\)|\[[^\]]*\]\([^)]*\)`)
	listMarker    = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	headingMarker = regexp.MustCompile(`^\s*#{1,6}\s*`)
)

var reservedTokens = map[string]bool{
	"contributors": true,
	"contributor":  true,
	"authors":      true,
	"author":       true,
}

// commonWords are capitalized words that head contributor lists but are not names.
var commonWords = map[string]bool{
	"the": true, "thanks": true, "special": true, "team": true, "core": true,
	"maintainers": true, "maintainer": true, "developers": true, "developer": true,
	"credits": true, "lead": true, "original": true, "and": true,
}

// ExtractNames returns the personal names found in text, in order of first
// appearance and deduplicated with NameMatches.
func ExtractNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = headingMarker.ReplaceAllString(line, "")
		line = emailPattern.ReplaceAllString(line, " ")
		line = urlPattern.ReplaceAllString(line, " ")

		for _, match := range namePattern.FindAllString(line, -1) {
			name := stripReserved(match)
			if name == "" {
				continue
			}
			names = addName(names, name)
		}
	}
	return names
}

// stripReserved drops tokens such as "Contributors" and trailing punctuation.
func stripReserved(match string) string {
	var kept []string
	for _, tok := range strings.Fields(match) {
		tok = strings.Trim(tok, "'’-")
		lower := strings.ToLower(tok)
		if tok == "" || reservedTokens[lower] || commonWords[lower] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func addName(names []string, name string) []string {
	for _, existing := range names {
		if NameMatches(existing, name) {
			return names
		}
	}
	return append(names, name)
}

// readmeSections returns the lines of every contributor or author section of
// a markdown README. A section starts at a heading (or a line ending in ':')
// that mentions contributors or authors and ends at the next heading.
func readmeSections(text string) string {
	var out []string
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		isHeading := strings.HasPrefix(trimmed, "#")
		isLabel := strings.HasSuffix(trimmed, ":") && !strings.Contains(strings.TrimSuffix(trimmed, ":"), ":")
		if isHeading || isLabel {
			lower := strings.ToLower(trimmed)
			mentions := strings.Contains(lower, "contributor") || strings.Contains(lower, "author")
			if mentions {
				inSection = true
				continue
			}
			if isHeading {
				inSection = false
				continue
			}
		}
		if inSection {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// tokens splits a name into lowercased word tokens; apostrophes stay inside tokens.
func tokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
}

// NameMatches reports whether a and b plausibly name the same person:
//  1. case-folded equality;
//  2. same last token and the same first token or first initial (both names
//     need at least two tokens);
//  3. at least two shared tokens longer than three characters;
//  4. a single-token name longer than three characters that appears among the
//     tokens of a multi-token name.
func NameMatches(a, b string) bool {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}

	if strings.Join(ta, " ") == strings.Join(tb, " ") {
		return true
	}

	if len(ta) >= 2 && len(tb) >= 2 && ta[len(ta)-1] == tb[len(tb)-1] {
		if ta[0] == tb[0] || []rune(ta[0])[0] == []rune(tb[0])[0] {
			return true
		}
	}

	shared := 0
	inB := make(map[string]bool, len(tb))
	for _, tok := range tb {
		if len([]rune(tok)) > 3 {
			inB[tok] = true
		}
	}
	for _, tok := range uniq(ta) {
		if inB[tok] {
			shared++
		}
	}
	if shared >= 2 {
		return true
	}

	single, multi := ta, tb
	if len(single) != 1 {
		single, multi = tb, ta
	}
	if len(single) == 1 && len(multi) > 1 && len([]rune(single[0])) > 3 {
		for _, tok := range multi {
			if tok == single[0] {
				return true
			}
		}
	}
	return false
}

func uniq(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0:0]
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
