package optimizer

import (
	"regexp"
	"strings"
)

// WordList is the set of disabled words, in configuration order.
type WordList []string

// ParseWordList splits a comma-separated setting, trimming entries and
// dropping blanks.
func ParseWordList(s string) WordList {
	var words WordList
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Matcher tests text for disabled words. Each word is a literal,
// case-insensitive substring.
type Matcher struct {
	words    WordList
	patterns []*regexp.Regexp
}

func NewMatcher(words WordList) *Matcher {
	m := &Matcher{words: words, patterns: make([]*regexp.Regexp, len(words))}
	for i, w := range words {
		m.patterns[i] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(w))
	}
	return m
}

// Words returns the configured words.
func (m *Matcher) Words() WordList {
	return m.words
}

// Empty reports whether there are no words to match.
func (m *Matcher) Empty() bool {
	return len(m.words) == 0
}

// Match reports whether any word occurs in text.
func (m *Matcher) Match(text string) bool {
	for _, p := range m.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchWord reports whether the i-th word occurs in text.
func (m *Matcher) MatchWord(i int, text string) bool {
	return m.patterns[i].MatchString(text)
}

// Hits returns the words that occur in text.
func (m *Matcher) Hits(text string) []string {
	var hits []string
	for i, p := range m.patterns {
		if p.MatchString(text) {
			hits = append(hits, m.words[i])
		}
	}
	return hits
}
