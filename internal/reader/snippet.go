package reader

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSnippetLength is the number of runes kept when truncating a passage
// for a result listing.
const DefaultSnippetLength = 300

const ellipsis = "…"

// Truncate cuts s to at most n runes, appending an ellipsis when anything was
// removed. n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + ellipsis
		}
		count++
	}
	return s
}

// Fragment is a run of snippet text, marked when it matched the highlighted
// phrase.
type Fragment struct {
	Text string `json:"text"`
	Mark bool   `json:"mark,omitempty"`
}

// Highlight splits s into fragments, marking every case-insensitive
// occurrence of phrase. Matching uses full Unicode case folding.
func Highlight(s, phrase string) []Fragment {
	if s == "" {
		return nil
	}
	folder := cases.Fold()
	needle := folder.String(phrase)
	if strings.TrimSpace(needle) == "" {
		return []Fragment{{Text: s}}
	}

	// folded is s case-folded rune by rune; orig maps each rune boundary in
	// folded back to the byte offset in s.
	var folded strings.Builder
	orig := map[int]int{}
	for i, r := range s {
		orig[folded.Len()] = i
		folded.WriteString(folder.String(string(r)))
	}
	orig[folded.Len()] = len(s)
	hay := folded.String()

	var out []Fragment
	last, pos := 0, 0
	for pos < len(hay) {
		k := strings.Index(hay[pos:], needle)
		if k < 0 {
			break
		}
		fs, fe := pos+k, pos+k+len(needle)
		start, okStart := orig[fs]
		end, okEnd := orig[fe]
		if !okStart || !okEnd {
			pos = fs + 1
			continue
		}
		if start > last {
			out = append(out, Fragment{Text: s[last:start]})
		}
		out = append(out, Fragment{Text: s[start:end], Mark: true})
		last, pos = end, fe
	}
	if last < len(s) {
		out = append(out, Fragment{Text: s[last:]})
	}
	return out
}

// containsFold reports whether s contains substr under Unicode case folding.
func containsFold(s, substr string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(substr))
}
