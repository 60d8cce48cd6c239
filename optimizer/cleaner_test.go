package optimizer

import (
	"strings"
	"testing"
	"time"

	"rpoptimizer/config"
)

func TestCleanerClean(t *testing.T) {
	tests := []struct {
		name  string
		rules string
		input string
		want  string
	}{
		{
			name:  "think block literal",
			rules: `/<think>[\s\S]*?<\/think>/gm`,
			input: "<think>internal</think>Hello world.",
			want:  "Hello world.",
		},
		{
			name:  "no rules is identity",
			rules: "",
			input: "  untouched  ",
			want:  "  untouched  ",
		},
		{
			name:  "blank lines only is identity",
			rules: "\n  \n",
			input: " x ",
			want:  " x ",
		},
		{
			name:  "bare pattern dot matches newline",
			rules: "a.b",
			input: "a\nb rest",
			want:  "rest",
		},
		{
			name:  "explicit flags replace defaults",
			rules: "/HELLO/i",
			input: "hello world hello",
			want:  "world",
		},
		{
			name:  "explicit flags without s",
			rules: "/a.b/i",
			input: "a\nb",
			want:  "a\nb",
		},
		{
			name:  "rules apply in order",
			rules: "<b>\n</b>",
			input: "<b>bold</b> text",
			want:  "bold text",
		},
		{
			name:  "invalid rule is skipped",
			rules: "(\nfoo",
			input: " foo bar ",
			want:  "bar",
		},
		{
			name:  "all rules invalid still trims",
			rules: "([",
			input: "  text  ",
			want:  "text",
		},
		{
			name:  "word class is ASCII only",
			rules: `/\w+/g`,
			input: "你好 abc",
			want:  "你好",
		},
		{
			name:  "digit class is ASCII only",
			rules: `/\d+/g`,
			input: "第１２章 chapter 12",
			want:  "第１２章 chapter",
		},
		{
			name:  "dollar matches only at the end",
			rules: `/end$/g`,
			input: "the end\n",
			want:  "the end",
		},
		{
			name:  "unicode flag code point escape",
			rules: `/\u{1F600}/gu`,
			input: "hi\U0001F600",
			want:  "hi",
		},
		{
			name:  "lookahead and backreference",
			rules: `(\w)\1(?=!)`,
			input: "woo! yes",
			want:  "w! yes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCleaner(tt.rules, 0)
			if got := c.Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanerSkipsInvalidRules(t *testing.T) {
	c := NewCleaner("(\nvalid\n"+strings.Repeat("a", maxRuleLength+1), 0)

	if got := len(c.Rules()); got != 1 {
		t.Errorf("len(Rules()) = %d, want 1", got)
	}
	if got := len(c.Skipped()); got != 2 {
		t.Fatalf("len(Skipped()) = %d, want 2", got)
	}
	if c.Skipped()[0].Source != "(" {
		t.Errorf("Skipped()[0].Source = %q, want %q", c.Skipped()[0].Source, "(")
	}
}

func TestCleanerTimeoutSkipsRule(t *testing.T) {
	input := strings.Repeat("a", 40) + "!"
	c := NewCleaner("^(a+)+$\n!", time.Millisecond)

	got := c.Clean(input)
	if got != strings.Repeat("a", 40) {
		t.Errorf("Clean() = %q, want the text with only the second rule applied", got)
	}
	if len(c.Skipped()) != 1 {
		t.Errorf("len(Skipped()) = %d, want 1 (timed out rule)", len(c.Skipped()))
	}
}

func TestCleanerIdempotent(t *testing.T) {
	inputs := []string{
		"<think>plan</think>她笑了。<StatusPlaceHolderImpl/>",
		"Hello <!-- note --> world.\n<UpdateVariable>x=1</UpdateVariable>",
		"```start\n<content>正文</content>\n```end",
		"plain text with nothing to remove",
	}

	c := NewCleaner(config.DefaultRegexFilters, 0)
	for _, in := range inputs {
		once := c.Clean(in)
		twice := c.Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCleanerDefaultRules(t *testing.T) {
	c := NewCleaner(config.DefaultRegexFilters, 0)
	if len(c.Skipped()) != 0 {
		t.Fatalf("default rules failed to compile: %v", c.Skipped())
	}

	in := "<thinking>hidden</thinking>\n他走了。<!-- hidden -->\n<UpdateVariable>\nhp=3\n</UpdateVariable>"
	if got := c.Clean(in); got != "他走了。" {
		t.Errorf("Clean() = %q, want %q", got, "他走了。")
	}
}
