package models

import (
	"slices"
	"testing"
)

func TestTermLabels(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want []string
	}{
		{"label only", Term{Term: "Capital"}, []string{"Capital"}},
		{"aliases trimmed", Term{Term: "Surplus Value", Aliases: "surplus-value, SV"}, []string{"Surplus Value", "surplus-value", "SV"}},
		{"stray commas", Term{Term: "labour", Aliases: " , labor,, "}, []string{"labour", "labor"}},
		{"blank label", Term{Term: "  ", Aliases: "x"}, []string{"x"}},
		{"nothing", Term{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.Labels(); !slices.Equal(got, tt.want) {
				t.Errorf("Labels() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPassageHasSection(t *testing.T) {
	none, two := -1, 2
	if (Passage{}).HasSection() {
		t.Error("nil section should not count")
	}
	if (Passage{Section: &none}).HasSection() {
		t.Error("section -1 should not count")
	}
	if !(Passage{Section: &two}).HasSection() {
		t.Error("section 2 should count")
	}
}

func TestPassageSnippet(t *testing.T) {
	p := Passage{Text: "full text"}
	if p.Snippet() != "full text" {
		t.Errorf("snippet = %q, want full text", p.Snippet())
	}
	p.TextSnippet = "short"
	if p.Snippet() != "short" {
		t.Errorf("snippet = %q, want short", p.Snippet())
	}
}
