package annotate

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// span is a claimed byte range [start, end) of the input text.
type span struct {
	start, end int
	seg        Segment
}

// findFootnotes returns footnote references in text, in order.
//
// A reference is a period followed by ASCII digits, e.g. "falls.12". The digit
// run must not continue into a word ("v.5x") and the period must not follow a
// digit, which would make it a decimal point ("3.14").
func findFootnotes(text string) []span {
	var out []span
	for i := 0; i < len(text); i++ {
		if text[i] != '.' {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		if j == i+1 {
			continue
		}
		if i > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:i]); unicode.IsDigit(r) {
				i = j - 1
				continue
			}
		}
		if j < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[j:]); isWordRune(r) {
				i = j - 1
				continue
			}
		}
		n, err := strconv.Atoi(text[i+1 : j])
		if err != nil {
			// Digit runs too long for an int stay plain text.
			i = j - 1
			continue
		}
		out = append(out, span{start: i, end: j, seg: FootnoteMarker(n, text[i:j])})
		i = j - 1
	}
	return out
}
