package optimizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

var numberMarker = regexp.MustCompile(`^\d+[.)]\s*`)

// numberedItem matches "{n}. text" up to the next marker or the end. The
// lookahead lets items share a line, which models often do.
var numberedItem = func() *regexp2.Regexp {
	re := regexp2.MustCompile(`\d+[.)]\s*.*?(?=\s*\d+[.)]|$)`, regexp2.None)
	re.MatchTimeout = time.Second
	return re
}()

// FormatNumbered renders items as "1. a\n2. b".
func FormatNumbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

// ParseNumbered reads a block with one numbered item per line, as produced
// by FormatNumbered (possibly edited by the user). Blank items are dropped.
func ParseNumbered(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(numberMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseRewritten extracts the numbered items of a model response. Text
// before the first marker is ignored. A match timeout ends parsing with the
// items found so far.
func ParseRewritten(response string) []string {
	var out []string
	m, err := numberedItem.FindStringMatch(response)
	for m != nil && err == nil {
		item := strings.TrimSpace(numberMarker.ReplaceAllString(m.String(), ""))
		if item != "" {
			out = append(out, item)
		}
		m, err = numberedItem.FindNextMatch(m)
	}
	return out
}
