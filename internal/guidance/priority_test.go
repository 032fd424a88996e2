package guidance

import "testing"

func TestPrioritize_DefaultRules(t *testing.T) {
	t.Parallel()
	rules := DefaultPriorityRules()

	tests := []struct {
		name     string
		c        Candidate
		want     Priority
		wantRule string
	}{
		{"first item is foundation", Candidate{Position: 0, Total: 20, StageRemaining: 6}, PriorityCritical, "foundation"},
		{"second item is foundation", Candidate{Position: 1, Total: 20, StageRemaining: 6}, PriorityCritical, "foundation"},
		{"foundation beats stage gate", Candidate{Position: 1, Total: 20, StageRemaining: 0}, PriorityCritical, "foundation"},
		{"near the end of a stage", Candidate{Position: 5, Total: 20, StageRemaining: 2}, PriorityHigh, "stage-gate"},
		{"unlocks three items", Candidate{Position: 5, Total: 20, StageRemaining: 5, Unlocks: []int{7, 8, 9}}, PriorityHigh, "multiplier"},
		{"unlocks two items", Candidate{Position: 5, Total: 20, StageRemaining: 5, Unlocks: []int{7, 8}}, PriorityMedium, "default"},
		{"final quarter", Candidate{Position: 15, Total: 20, StageRemaining: 5}, PriorityHigh, "late-stage"},
		{"just before final quarter", Candidate{Position: 14, Total: 20, StageRemaining: 5}, PriorityMedium, "default"},
		{"middle of the curriculum", Candidate{Position: 8, Total: 20, StageRemaining: 4}, PriorityMedium, "default"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, rule := Prioritize(rules, tt.c)
			if got != tt.want || rule != tt.wantRule {
				t.Errorf("Prioritize(%+v) = (%s, %s), want (%s, %s)", tt.c, got, rule, tt.want, tt.wantRule)
			}
		})
	}
}

func TestPrioritize_NoRules(t *testing.T) {
	t.Parallel()
	got, rule := Prioritize(nil, Candidate{Position: 0})
	if got != PriorityMedium || rule != "default" {
		t.Errorf("Prioritize(nil) = (%s, %s), want (medium, default)", got, rule)
	}
}

func TestPriority_Rank(t *testing.T) {
	t.Parallel()
	if !(PriorityCritical.Rank() < PriorityHigh.Rank() && PriorityHigh.Rank() < PriorityMedium.Rank()) {
		t.Errorf("ranks out of order: critical=%d high=%d medium=%d",
			PriorityCritical.Rank(), PriorityHigh.Rank(), PriorityMedium.Rank())
	}
}

func TestWithPriorityRules(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	e = New(e.Curriculum(), WithPriorityRules([]PriorityRule{
		{Name: "everything", Priority: PriorityCritical, Match: func(Candidate) bool { return true }},
	}))

	recs := e.Recommend(Completed(), "a", resolve(e, nil, nil), 0)
	for _, r := range recs {
		if r.Priority != PriorityCritical || r.Rule != "everything" {
			t.Errorf("item %d: got (%s, %s), want (critical, everything)", r.ItemID, r.Priority, r.Rule)
		}
	}
}
