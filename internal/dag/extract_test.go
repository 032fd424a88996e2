package dag

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Dependency
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \n",
			want: nil,
		},
		{
			name: "prose without references",
			text: "Feeds the investor narrative and later fundraising work.",
			want: nil,
		},
		{
			name: "malformed references",
			text: "Pitch (#abc) → Deck (# 12) → Model #13",
			want: nil,
		},
		{
			name: "single reference",
			text: "Market sizing (#10)",
			want: []Dependency{{Target: 10, Description: "Market sizing"}},
		},
		{
			name: "slash pair shares description",
			text: "Go-to-market plan (#19/#21)",
			want: []Dependency{
				{Target: 19, Description: "Go-to-market plan"},
				{Target: 21, Description: "Go-to-market plan"},
			},
		},
		{
			name: "arrow separated clauses",
			text: "Customer personas (#10) → Pricing and channels (#19/#21)",
			want: []Dependency{
				{Target: 10, Description: "Customer personas"},
				{Target: 19, Description: "Pricing and channels"},
				{Target: 21, Description: "Pricing and channels"},
			},
		},
		{
			name: "ascii arrows and commas",
			text: "Interviews (#4), -> Value prop (#5); => Deck (#6)",
			want: []Dependency{
				{Target: 4, Description: "Interviews"},
				{Target: 5, Description: "Value prop"},
				{Target: 6, Description: "Deck"},
			},
		},
		{
			name: "without an arrow the clause runs from the start",
			text: "Feeds pricing (#7) and the revenue model (#8)",
			want: []Dependency{
				{Target: 7, Description: "Feeds pricing"},
				{Target: 8, Description: "Feeds pricing (#7) and the revenue model"},
			},
		},
		{
			name: "arrow resets the clause start",
			text: "Team (#1), equity (#2) → Cap table (#3) and vesting (#4)",
			want: []Dependency{
				{Target: 1, Description: "Team"},
				{Target: 2, Description: "Team (#1), equity"},
				{Target: 3, Description: "Cap table"},
				{Target: 4, Description: "Cap table (#3) and vesting"},
			},
		},
		{
			name: "duplicate target keeps first description",
			text: "A (#3) → B (#3)",
			want: []Dependency{{Target: 3, Description: "A"}},
		},
		{
			name: "spaces inside brackets",
			text: "Cap table ( #24 / #25 )",
			want: []Dependency{
				{Target: 24, Description: "Cap table"},
				{Target: 25, Description: "Cap table"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseDependencies(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDependencies(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParseDependencies_ExactTargets(t *testing.T) {
	t.Parallel()
	deps := ParseDependencies("Sizing feeds the model (#10) and the raise (#19/#21)")
	var targets []int
	for _, d := range deps {
		targets = append(targets, d.Target)
	}
	sort.Ints(targets)
	if diff := cmp.Diff([]int{10, 19, 21}, targets); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDependencies_Idempotent(t *testing.T) {
	t.Parallel()
	text := "Deck (#6) → Raise (#7/#8)"
	first := ParseDependencies(text)
	second := ParseDependencies(text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated parse differs (-first +second):\n%s", diff)
	}
}
