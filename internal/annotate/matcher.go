package annotate

import (
	"slices"
	"unicode/utf8"

	"github.com/starford/lectern/internal/models"
)

// pattern is one match string (a term label or alias) in folded form.
type pattern struct {
	runes  []rune
	termID string
}

// node is an Aho-Corasick automaton state.
type node struct {
	next map[rune]int32
	fail int32
	// out lists the patterns that end in this state, including those
	// reachable through failure links.
	out []int32
}

// Matcher finds whole-word, case-insensitive occurrences of glossary terms.
//
// A Matcher is built once per term set and is immutable afterwards, so a
// single Matcher may annotate many passages concurrently.
type Matcher struct {
	patterns []pattern
	nodes    []node
}

// NewMatcher builds a Matcher for the labels and aliases of terms.
//
// Match strings that fold to the same text are kept once, owned by the first
// term that declares them.
func NewMatcher(terms []models.Term) *Matcher {
	m := &Matcher{nodes: []node{{}}}
	seen := make(map[string]struct{})
	for _, t := range terms {
		for _, label := range t.Labels() {
			runes := foldString(label)
			key := string(runes)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			m.insert(pattern{runes: runes, termID: t.ID})
		}
	}
	m.link()
	return m
}

// Len returns the number of distinct match strings.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

func (m *Matcher) insert(p pattern) {
	idx := int32(len(m.patterns))
	m.patterns = append(m.patterns, p)

	var cur int32
	for _, r := range p.runes {
		nx, ok := m.nodes[cur].next[r]
		if !ok {
			nx = int32(len(m.nodes))
			m.nodes = append(m.nodes, node{})
			if m.nodes[cur].next == nil {
				m.nodes[cur].next = make(map[rune]int32)
			}
			m.nodes[cur].next[r] = nx
		}
		cur = nx
	}
	m.nodes[cur].out = append(m.nodes[cur].out, idx)
}

// link computes failure links breadth first and merges outputs along them.
func (m *Matcher) link() {
	queue := make([]int32, 0, len(m.nodes))
	for _, child := range m.nodes[0].next {
		m.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for r, v := range m.nodes[u].next {
			f := m.nodes[u].fail
			for f != 0 {
				if _, ok := m.nodes[f].next[r]; ok {
					break
				}
				f = m.nodes[f].fail
			}
			if nf, ok := m.nodes[f].next[r]; ok && nf != v {
				m.nodes[v].fail = nf
			} else {
				m.nodes[v].fail = 0
			}
			m.nodes[v].out = append(m.nodes[v].out, m.nodes[m.nodes[v].fail].out...)
			queue = append(queue, v)
		}
	}
}

func (m *Matcher) step(state int32, r rune) int32 {
	for {
		if nx, ok := m.nodes[state].next[r]; ok {
			return nx
		}
		if state == 0 {
			return 0
		}
		state = m.nodes[state].fail
	}
}

// candidate is a whole-word occurrence of a pattern, in rune indexes
// [start, end) of the scanned text.
type candidate struct {
	start, end int
	pattern    int32
}

// scan returns every whole-word occurrence of every pattern in runes.
func (m *Matcher) scan(runes []rune) []candidate {
	var out []candidate
	var state int32
	for i, r := range runes {
		state = m.step(state, foldRune(r))
		for _, p := range m.nodes[state].out {
			end := i + 1
			start := end - len(m.patterns[p].runes)
			if start > 0 && isWordRune(runes[start-1]) {
				continue
			}
			if end < len(runes) && isWordRune(runes[end]) {
				continue
			}
			out = append(out, candidate{start: start, end: end, pattern: p})
		}
	}
	return out
}

// Annotate splits text into plain text, footnote marker and term link
// segments. It never fails; without terms or matches the result is a single
// plain text segment, and an empty text yields no segments.
func (m *Matcher) Annotate(text string) []Segment {
	if text == "" {
		return nil
	}

	// Decode once, remembering where each rune starts so that matches can be
	// cut from the original bytes.
	runes := make([]rune, 0, len(text))
	offsets := make([]int, 0, len(text)+1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		runes = append(runes, r)
		offsets = append(offsets, i)
		i += size
	}
	offsets = append(offsets, len(text))

	claimed := make([]bool, len(runes))
	runeAt := func(b int) int {
		i, _ := slices.BinarySearch(offsets, b)
		return i
	}

	spans := findFootnotes(text)
	for _, s := range spans {
		for i := runeAt(s.start); i < runeAt(s.end); i++ {
			claimed[i] = true
		}
	}

	if m.Len() > 0 {
		cands := m.scan(runes)
		// Longest match strings claim text first; among equals, earlier
		// declared patterns and then earlier positions win.
		slices.SortStableFunc(cands, func(a, b candidate) int {
			la, lb := a.end-a.start, b.end-b.start
			if la != lb {
				return lb - la
			}
			if a.pattern != b.pattern {
				return int(a.pattern - b.pattern)
			}
			return a.start - b.start
		})
		for _, c := range cands {
			if slices.Contains(claimed[c.start:c.end], true) {
				continue
			}
			for i := c.start; i < c.end; i++ {
				claimed[i] = true
			}
			start, end := offsets[c.start], offsets[c.end]
			spans = append(spans, span{
				start: start,
				end:   end,
				seg:   TermLink(text[start:end], m.patterns[c.pattern].termID),
			})
		}
	}

	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })

	out := make([]Segment, 0, 2*len(spans)+1)
	pos := 0
	for _, s := range spans {
		if s.start > pos {
			out = append(out, PlainText(text[pos:s.start]))
		}
		out = append(out, s.seg)
		pos = s.end
	}
	if pos < len(text) {
		out = append(out, PlainText(text[pos:]))
	}
	return out
}

// Annotate annotates text against terms. Callers annotating many passages
// with the same terms should build a Matcher once and reuse it.
func Annotate(text string, terms []models.Term) []Segment {
	return NewMatcher(terms).Annotate(text)
}

func foldString(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, foldRune(r))
	}
	return out
}
