package optimizer

import (
	"iter"
	"slices"
	"strings"
)

const terminalMarks = ".!?。！？"

func isTerminal(r rune) bool {
	return strings.ContainsRune(terminalMarks, r)
}

// Sentence is a span of the source text. Start and End are byte offsets.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Segment yields the sentences of text in order. A sentence is a run of
// non-terminal characters followed by at most one terminal mark. Terminal
// marks that do not follow such a run belong to no sentence. When nothing
// qualifies, the whole text is yielded as one sentence.
func Segment(text string) iter.Seq[Sentence] {
	return func(yield func(Sentence) bool) {
		found := false
		start := -1
		for i, r := range text {
			if !isTerminal(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start < 0 {
				continue
			}
			end := i + len(string(r))
			found = true
			if !yield(Sentence{Text: text[start:end], Start: start, End: end}) {
				return
			}
			start = -1
		}
		if start >= 0 {
			yield(Sentence{Text: text[start:], Start: start, End: len(text)})
			return
		}
		if !found {
			yield(Sentence{Text: text, Start: 0, End: len(text)})
		}
	}
}

// Sentences collects Segment into a slice of strings.
func Sentences(text string) []string {
	var out []string
	for s := range Segment(text) {
		out = append(out, s.Text)
	}
	return slices.Clip(out)
}
