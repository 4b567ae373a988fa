package annotate

import "unicode"

// isWordRune reports whether r counts as part of a word for boundary checks:
// Unicode letters, decimal digits, combining marks and underscore.
// Hyphens and apostrophes separate words.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// foldRune maps r to the smallest rune in its simple case folding orbit, so
// that two runes fold to the same value exactly when they match
// case-insensitively. The mapping is one rune to one rune, which keeps
// matched offsets aligned with the original text.
func foldRune(r rune) rune {
	m := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < m {
			m = f
		}
	}
	return m
}
