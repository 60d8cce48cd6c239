package optimizer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"rpoptimizer/config"
	"rpoptimizer/metrics"
)

// maxRuleLength bounds user patterns before compilation.
const maxRuleLength = 4096

// DefaultRuleTimeout bounds a single rule's matching time.
const DefaultRuleTimeout = 250 * time.Millisecond

var ruleLiteral = regexp.MustCompile(`^/(.*)/([gimsuy]*)$`)

// Rule is one compiled cleaning pattern.
type Rule struct {
	Source string
	re     *regexp2.Regexp
}

// RuleError records a rule that was skipped.
type RuleError struct {
	Source string
	Err    error
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Source, e.Err)
}

// Cleaner removes noise (reasoning blocks, markup, placeholders) from
// message text using user-configured patterns. A Cleaner is built per flow
// and is not safe for concurrent use.
type Cleaner struct {
	rules      []Rule
	skipped    []RuleError
	configured bool
}

// NewCleaner compiles newline-separated rule lines. Each line is either a
// /pattern/flags literal or a bare pattern. Without explicit flags a rule is
// global and dot-matches-newline. Rules that fail to compile are skipped.
func NewCleaner(rules string, timeout time.Duration) *Cleaner {
	if timeout <= 0 {
		timeout = DefaultRuleTimeout
	}

	c := &Cleaner{}
	for _, line := range strings.Split(rules, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.configured = true

		re, err := compileRule(line)
		if err != nil {
			c.skip(line, err)
			continue
		}
		re.MatchTimeout = timeout
		c.rules = append(c.rules, Rule{Source: line, re: re})
	}
	return c
}

// CleanerFor builds a Cleaner from a settings snapshot.
func CleanerFor(s config.Settings) *Cleaner {
	return NewCleaner(s.RegexFilters, time.Duration(s.RegexTimeoutMS)*time.Millisecond)
}

func compileRule(line string) (*regexp2.Regexp, error) {
	if len(line) > maxRuleLength {
		return nil, fmt.Errorf("pattern longer than %d bytes", maxRuleLength)
	}

	pattern, flags := line, "gs"
	if m := ruleLiteral.FindStringSubmatch(line); m != nil {
		pattern = m[1]
		if m[2] != "" {
			flags = m[2]
		}
	}

	// JavaScript semantics: ASCII \w \d \b, and $ only at the very end
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'u':
			opts |= regexp2.Unicode
		}
		// g and y need no option: removal is always global
	}

	return regexp2.Compile(pattern, opts)
}

func (c *Cleaner) skip(source string, err error) {
	c.skipped = append(c.skipped, RuleError{Source: source, Err: err})
	metrics.CleanerRuleErrors.Inc()
	log := config.Logger("cleaner")
	log.Warn().Str("rule", source).Err(err).Msg("invalid cleaning rule skipped")
}

// Rules returns the compiled rules in order.
func (c *Cleaner) Rules() []Rule {
	return c.rules
}

// Skipped returns the rules that were not applied, with the reason.
func (c *Cleaner) Skipped() []RuleError {
	return c.skipped
}

// Clean applies every rule in order as a global removal and trims the result.
// A rule that fails at match time (timeout) is skipped and leaves the text as
// it was before that rule. With no rules the text is returned unchanged.
func (c *Cleaner) Clean(text string) string {
	if !c.configured {
		return text
	}

	cleaned := text
	for _, r := range c.rules {
		out, err := r.re.Replace(cleaned, "", -1, -1)
		if err != nil {
			c.skip(r.Source, err)
			continue
		}
		cleaned = out
	}
	return strings.TrimSpace(cleaned)
}
