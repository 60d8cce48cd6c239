package optimizer

import (
	"slices"
	"strings"
	"testing"
)

func TestParseWordList(t *testing.T) {
	got := ParseWordList(" 讨厌, ,Hate ,, a.b ")
	want := WordList{"讨厌", "Hate", "a.b"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseWordList() = %q, want %q", got, want)
	}
	if got := ParseWordList(""); len(got) != 0 {
		t.Errorf("ParseWordList(\"\") = %q, want empty", got)
	}
}

func TestMatcherMatchesCaseInsensitiveSubstring(t *testing.T) {
	texts := []string{
		"I HATE mondays",
		"他说：“我讨厌你。”",
		"a.b is literal",
		"axb is not",
		"(parens) [brackets] and $dollars^",
		"",
		"Straße",
	}
	lists := []WordList{
		{},
		{"hate"},
		{"讨厌"},
		{"a.b"},
		{"(parens)", "[brackets]"},
		{"$dollars^"},
		{"x", "y", "z"},
		{"STRASSE"},
	}

	for _, words := range lists {
		m := NewMatcher(words)
		for _, text := range texts {
			want := false
			for _, w := range words {
				if strings.Contains(strings.ToLower(text), strings.ToLower(w)) {
					want = true
				}
			}
			if got := m.Match(text); got != want {
				t.Errorf("Match(%q) with %q = %v, want %v", text, words, got, want)
			}
		}
	}
}

func TestMatcherEmpty(t *testing.T) {
	m := NewMatcher(nil)
	if !m.Empty() {
		t.Error("Empty() = false for no words")
	}
	if m.Match("anything") {
		t.Error("Match() = true for no words")
	}
}

func TestMatcherHits(t *testing.T) {
	m := NewMatcher(WordList{"cat", "dog", "bird"})
	got := m.Hits("The Dog chased the CAT.")
	if !slices.Equal(got, []string{"cat", "dog"}) {
		t.Errorf("Hits() = %q", got)
	}
}
