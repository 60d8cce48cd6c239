package optimizer

import (
	"slices"
	"testing"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"latin", "A. B. C.", []string{"A.", " B.", " C."}},
		{"cjk dialogue", "他说：“我讨厌你。”然后离开了。", []string{"他说：“我讨厌你。", "”然后离开了。"}},
		{"mixed marks", "Hi! 你好？ok", []string{"Hi!", " 你好？", "ok"}},
		{"no terminal", "Hello world", []string{"Hello world"}},
		{"repeated marks", "Wait!! What", []string{"Wait!", " What"}},
		{"only marks", "...", []string{"..."}},
		{"empty", "", []string{""}},
		{"full width stop", "一。二。", []string{"一。", "二。"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sentences(tt.text); !slices.Equal(got, tt.want) {
				t.Errorf("Sentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSegmentSpans(t *testing.T) {
	text := "第一句。Second one! 三"
	for s := range Segment(text) {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("span [%d:%d] = %q, Text = %q", s.Start, s.End, text[s.Start:s.End], s.Text)
		}
	}
}

func TestSegmentStopsEarly(t *testing.T) {
	n := 0
	for range Segment("a. b. c. d.") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("consumed %d sentences, want 2", n)
	}
}
