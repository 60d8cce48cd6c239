package optimizer

import (
	"errors"
	"slices"
	"testing"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		original  string
		rewritten string
		want      string
		mode      SpliceMode
		replaced  int
		missing   []string
	}{
		{
			name:      "count mismatch falls back to block",
			message:   "A. B. C.",
			original:  "1. A.\n2. B.",
			rewritten: "1. X. 2. Y. 3. Z.",
			want:      "1. X. 2. Y. 3. Z. C.",
			mode:      SpliceBlock,
			replaced:  2,
		},
		{
			name:      "equal counts replace pairwise",
			message:   "A. B. C.",
			original:  "1. A.\n2. B.",
			rewritten: "1. X.\n2. Y.",
			want:      "X. Y. C.",
			mode:      SplicePairwise,
			replaced:  2,
		},
		{
			name:      "rewrite containing a later original is not rematched",
			message:   "Go. Go. End.",
			original:  "1. Go.\n2. Go.",
			rewritten: "1. Go. Go.\n2. Run.",
			want:      "Go. Go. Run. End.",
			mode:      SplicePairwise,
			replaced:  2,
		},
		{
			name:      "only the first occurrence is replaced",
			message:   "讨厌。讨厌。",
			original:  "1. 讨厌。",
			rewritten: "1. 喜欢。",
			want:      "喜欢。讨厌。",
			mode:      SplicePairwise,
			replaced:  1,
		},
		{
			name:      "missing original is skipped",
			message:   "A. B.",
			original:  "1. A.\n2. Q.",
			rewritten: "1. X.\n2. Y.",
			want:      "X. B.",
			mode:      SplicePairwise,
			replaced:  1,
			missing:   []string{"Q."},
		},
		{
			name:      "block is trimmed",
			message:   "前文。A句。B句。后文。",
			original:  "1. A句。\n2. B句。",
			rewritten: "\n1. 新句。\n",
			want:      "前文。1. 新句。后文。",
			mode:      SpliceBlock,
			replaced:  2,
		},
		{
			name:      "deleted sentence takes following spaces",
			message:   "A.  B.\tC.",
			original:  "1. A.\n2. B.",
			rewritten: "1. X.",
			want:      "1. X.  C.",
			mode:      SpliceBlock,
			replaced:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Reconcile(tt.message, tt.original, tt.rewritten)
			if err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("Reconcile().Text = %q, want %q", res.Text, tt.want)
			}
			if res.Mode != tt.mode {
				t.Errorf("Reconcile().Mode = %q, want %q", res.Mode, tt.mode)
			}
			if res.Replaced != tt.replaced {
				t.Errorf("Reconcile().Replaced = %d, want %d", res.Replaced, tt.replaced)
			}
			if !slices.Equal(res.Missing, tt.missing) {
				t.Errorf("Reconcile().Missing = %q, want %q", res.Missing, tt.missing)
			}
		})
	}
}

func TestReconcileAnchorNotFound(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		rewritten string
	}{
		{"anchor altered", "1. Q.\n2. B.", "1. X."},
		{"no originals", "", "1. X."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Reconcile("A. B.", tt.original, tt.rewritten)
			if !errors.Is(err, ErrAnchorNotFound) {
				t.Fatalf("Reconcile() error = %v, want ErrAnchorNotFound", err)
			}
			if res.Text != "A. B." {
				t.Errorf("Reconcile().Text = %q, want message unchanged", res.Text)
			}
			if res.Changed() {
				t.Error("Changed() = true after a failed splice")
			}
		})
	}
}

func TestReconcileRoundTrip(t *testing.T) {
	message := "第一句。Second sentence! 第三句？ Tail text"
	originals := []string{"第一句。", "Second sentence!", "第三句？"}
	rewrites := []string{"一。", "Two!", "三？"}

	res, err := Reconcile(message, FormatNumbered(originals), FormatNumbered(rewrites))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := "一。Two! 三？ Tail text"
	if res.Text != want {
		t.Errorf("Reconcile().Text = %q, want %q", res.Text, want)
	}
	if !res.Changed() {
		t.Error("Changed() = false")
	}
}
