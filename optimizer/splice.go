package optimizer

import (
	"strings"
)

// SpliceMode tells how rewritten sentences were put back.
type SpliceMode string

const (
	// SplicePairwise replaces each original with the rewrite of the same index.
	SplicePairwise SpliceMode = "pairwise"
	// SpliceBlock replaces the first original with the whole response and
	// deletes the other originals. Used when the counts differ.
	SpliceBlock SpliceMode = "block"
)

// SpliceResult is the outcome of Reconcile.
type SpliceResult struct {
	Text      string
	Mode      SpliceMode
	Originals int
	Rewrites  int
	Replaced  int
	// Missing lists originals that were not found in the message.
	Missing []string
}

// Changed reports whether any span was substituted.
func (r SpliceResult) Changed() bool {
	return r.Replaced > 0
}

type segment struct {
	text    string
	claimed bool
}

// spans tokenizes a message into free text and claimed (substituted) spans.
// Lookups only search free text, so an inserted rewrite is never matched
// again by a later original.
type spans struct {
	segs []segment
}

func newSpans(text string) *spans {
	return &spans{segs: []segment{{text: text}}}
}

// substitute replaces the first free occurrence of needle. When trimAfter is
// set, horizontal whitespace right after the occurrence is removed as well.
func (s *spans) substitute(needle, replacement string, trimAfter bool) bool {
	if needle == "" {
		return false
	}
	for i, seg := range s.segs {
		if seg.claimed {
			continue
		}
		at := strings.Index(seg.text, needle)
		if at < 0 {
			continue
		}

		before := seg.text[:at]
		after := seg.text[at+len(needle):]
		if trimAfter {
			after = strings.TrimLeft(after, " \t")
		}

		parts := make([]segment, 0, 3)
		if before != "" {
			parts = append(parts, segment{text: before})
		}
		parts = append(parts, segment{text: replacement, claimed: true})
		if after != "" {
			parts = append(parts, segment{text: after})
		}

		s.segs = append(s.segs[:i], append(parts, s.segs[i+1:]...)...)
		return true
	}
	return false
}

func (s *spans) contains(needle string) bool {
	for _, seg := range s.segs {
		if !seg.claimed && strings.Contains(seg.text, needle) {
			return true
		}
	}
	return false
}

func (s *spans) String() string {
	var b strings.Builder
	for _, seg := range s.segs {
		b.WriteString(seg.text)
	}
	return b.String()
}

// Reconcile puts the model's rewrites back into message.
//
// originalNumbered is the block that was sent (one "{n}. sentence" per line),
// rewritten is the raw response. With equal item counts each original's first
// occurrence is replaced by its paired rewrite. Otherwise the first original is
// used as an anchor: it is replaced by the whole response and the remaining
// originals are deleted. If the anchor is not in the message, ErrAnchorNotFound
// is returned and the text is left unchanged.
func Reconcile(message, originalNumbered, rewritten string) (SpliceResult, error) {
	originals := ParseNumbered(originalNumbered)
	rewrites := ParseRewritten(rewritten)

	res := SpliceResult{
		Text:      message,
		Originals: len(originals),
		Rewrites:  len(rewrites),
	}
	sp := newSpans(message)

	if len(originals) == len(rewrites) {
		res.Mode = SplicePairwise
		for i, original := range originals {
			if !sp.substitute(original, rewrites[i], false) {
				res.Missing = append(res.Missing, original)
				continue
			}
			res.Replaced++
		}
		res.Text = sp.String()
		return res, nil
	}

	res.Mode = SpliceBlock
	if len(originals) == 0 || !sp.contains(originals[0]) {
		return res, ErrAnchorNotFound
	}

	sp.substitute(originals[0], strings.TrimSpace(rewritten), false)
	res.Replaced++
	for _, original := range originals[1:] {
		if !sp.substitute(original, "", true) {
			res.Missing = append(res.Missing, original)
			continue
		}
		res.Replaced++
	}
	res.Text = sp.String()
	return res, nil
}
