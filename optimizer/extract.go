package optimizer

import (
	"strings"
	"unicode"
)

const ellipsis = "……"

func isLeadingJunk(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`"'“‘`, r)
}

func isTrailingJunk(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`"'”’`, r)
}

// NormalizeSentence prepares a matched sentence for display and for the
// rewrite request: newlines become spaces, emphasis markers go, wrapping
// quotes are trimmed, and text before the last CJK ellipsis is dropped
// (it is usually the tail of quoted dialogue).
func NormalizeSentence(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "*", "")
	s = strings.TrimLeftFunc(s, isLeadingJunk)
	s = strings.TrimRightFunc(s, isTrailingJunk)

	if i := strings.LastIndex(s, ellipsis); i != -1 && i+len(ellipsis) < len(s) {
		s = s[i+len(ellipsis):]
	}

	s = strings.TrimLeftFunc(s, isLeadingJunk)
	return strings.TrimSpace(s)
}

// Extract returns the normalized sentences of text that contain a disabled
// word, without duplicates. Words are the outer loop, so a sentence appears
// at the position of the first word that finds it, not in document order.
func Extract(text string, m *Matcher) []string {
	if m.Empty() {
		return nil
	}

	sentences := Sentences(text)
	seen := make(map[string]struct{})
	var out []string

	for i := range m.Words() {
		for _, sentence := range sentences {
			if !m.MatchWord(i, sentence) {
				continue
			}
			cleaned := NormalizeSentence(sentence)
			if cleaned == "" {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}
			out = append(out, cleaned)
		}
	}
	return out
}
