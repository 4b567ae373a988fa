// Package annotate turns raw passage text into renderable segments: plain
// text, footnote markers and glossary term links.
//
// Annotation is lossless. Concatenating the Text of the returned segments in
// order always yields the input string.
package annotate

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Segment.
type Kind int

const (
	KindText Kind = iota
	KindFootnote
	KindTerm
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindFootnote: "footnote",
	KindTerm:     "term",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("annotate: unknown segment kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("annotate: unknown segment kind %q", string(b))
}

// Segment is one atomic unit of annotated output.
//
// Text is always the literal substring of the input covered by the segment.
// For footnotes that includes the leading period (".12"); Footnote holds the
// parsed number. For term links TermID names the linked term.
type Segment struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	Footnote int    `json:"footnote,omitempty"`
	TermID   string `json:"term_id,omitempty"`
}

// PlainText returns a plain text segment.
func PlainText(s string) Segment {
	return Segment{Kind: KindText, Text: s}
}

// FootnoteMarker returns a footnote segment covering text.
func FootnoteMarker(n int, text string) Segment {
	return Segment{Kind: KindFootnote, Text: text, Footnote: n}
}

// TermLink returns a segment linking matched text to a glossary term.
func TermLink(text, termID string) Segment {
	return Segment{Kind: KindTerm, Text: text, TermID: termID}
}

// Join concatenates the text of segs.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
