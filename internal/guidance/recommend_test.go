package guidance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecommend_SecondStage(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	req := resolve(e, map[int]bool{3: false}, nil)
	done := Completed(1, 2)

	stage := e.CurrentStage(req, done)
	if stage.ID != "b" {
		t.Fatalf("CurrentStage = %q, want b", stage.ID)
	}

	recs := e.Recommend(done, stage.ID, req, DefaultLimit)
	if diff := cmp.Diff([]int{4, 5, 6}, recIDs(recs)); diff != "" {
		t.Fatalf("recommended items mismatch (-want +got):\n%s", diff)
	}

	if recs[0].Blocked {
		t.Errorf("item 4 should be unblocked, blockers = %+v", recs[0].Blockers)
	}
	if recs[0].Reason != "Next in sequence" {
		t.Errorf("item 4 reason = %q", recs[0].Reason)
	}

	wantBlockers := map[int][]Blocker{
		5: {{ItemID: 4, Title: itemTitle(4), Kind: BlockerSequence}},
		6: {{ItemID: 5, Title: itemTitle(5), Kind: BlockerSequence}},
	}
	for _, r := range recs[1:] {
		if !r.Blocked {
			t.Errorf("item %d should be blocked", r.ItemID)
		}
		if diff := cmp.Diff(wantBlockers[r.ItemID], r.Blockers); diff != "" {
			t.Errorf("item %d blockers mismatch (-want +got):\n%s", r.ItemID, diff)
		}
		if r.Priority != PriorityHigh || r.Rule != "stage-gate" {
			t.Errorf("item %d priority = (%s, %s), want (high, stage-gate)", r.ItemID, r.Priority, r.Rule)
		}
	}
	if want := "Blocked: complete #4 " + itemTitle(4) + " first"; recs[1].Reason != want {
		t.Errorf("item 5 reason = %q, want %q", recs[1].Reason, want)
	}
}

func TestRecommend_OptionalNeverRecommended(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	req := resolve(e, nil, map[int]bool{7: false})
	done := Completed(1, 2, 3, 4, 5, 6)

	stage := e.CurrentStage(req, done)
	if stage.ID != "c" {
		t.Fatalf("CurrentStage = %q, want c", stage.ID)
	}
	recs := e.Recommend(done, stage.ID, req, 0)
	if diff := cmp.Diff([]int{8, 9}, recIDs(recs)); diff != "" {
		t.Errorf("recommended items mismatch (-want +got):\n%s", diff)
	}
	// Item 8 follows an optional item, so the sequence rule does not hold it.
	if recs[0].Blocked {
		t.Errorf("item 8 blocked by %+v", recs[0].Blockers)
	}
}

func TestRecommend_FreshProject(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	req := resolve(e, nil, nil)

	recs := e.Recommend(Completed(), "a", req, 0)
	if diff := cmp.Diff([]int{1, 2, 3}, recIDs(recs)); diff != "" {
		t.Fatalf("recommended items mismatch (-want +got):\n%s", diff)
	}
	first := recs[0]
	if first.Priority != PriorityCritical || first.Reason != "Foundation: must complete before proceeding" {
		t.Errorf("item 1 = (%s, %q)", first.Priority, first.Reason)
	}
	if first.Estimate != "1-2 weeks" {
		t.Errorf("item 1 estimate = %q", first.Estimate)
	}
}

func TestRecommend_DependencyBlockers(t *testing.T) {
	t.Parallel()
	e := buildEngine(t, []stageSpec{
		{id: "a", items: []int{1, 2}},
		{id: "b", items: []int{3, 4, 5, 6, 7, 8, 9}, notes: map[int]string{
			5: "Draws on (#4) → pricing model",
			6: "(#4)",
			7: "(#4/#2)",
		}},
	})
	req := resolve(e, nil, nil)
	done := Completed(1, 2, 3)

	recs := e.Recommend(done, "b", req, 0)
	byID := make(map[int]Recommendation, len(recs))
	for _, r := range recs {
		byID[r.ItemID] = r
	}

	four := byID[4]
	if four.Blocked {
		t.Errorf("item 4 blocked by %+v", four.Blockers)
	}
	if diff := cmp.Diff([]int{5, 6, 7}, four.Unlocks); diff != "" {
		t.Errorf("item 4 unlocks mismatch (-want +got):\n%s", diff)
	}
	if four.Rule != "multiplier" || four.Reason != "Unlocks 3 downstream item(s)" {
		t.Errorf("item 4 = (%s, %q)", four.Rule, four.Reason)
	}
	if recs[0].ItemID != 4 {
		t.Errorf("first recommendation = %d, want 4", recs[0].ItemID)
	}

	// Item 5's prerequisite and predecessor coincide: one blocker only.
	wantFive := []Blocker{{ItemID: 4, Title: itemTitle(4), Kind: BlockerDependency, Description: "Draws on"}}
	if diff := cmp.Diff(wantFive, byID[5].Blockers); diff != "" {
		t.Errorf("item 5 blockers mismatch (-want +got):\n%s", diff)
	}

	// Item 7 depends on 4 (open) and 2 (done), and follows 6 (open).
	wantSeven := []Blocker{
		{ItemID: 4, Title: itemTitle(4), Kind: BlockerDependency},
		{ItemID: 6, Title: itemTitle(6), Kind: BlockerSequence},
	}
	if diff := cmp.Diff(wantSeven, byID[7].Blockers); diff != "" {
		t.Errorf("item 7 blockers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 2}, byID[7].Dependencies); diff != "" {
		t.Errorf("item 7 dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommend_OptionalPrerequisiteDoesNotBlock(t *testing.T) {
	t.Parallel()
	e := buildEngine(t, []stageSpec{
		{id: "a", items: []int{1, 2, 3}, notes: map[int]string{3: "(#1)"}},
	})
	req := resolve(e, map[int]bool{1: false, 2: false}, nil)

	recs := e.Recommend(Completed(), "a", req, 0)
	if diff := cmp.Diff([]int{3}, recIDs(recs)); diff != "" {
		t.Fatalf("recommended items mismatch (-want +got):\n%s", diff)
	}
	if recs[0].Blocked {
		t.Errorf("item 3 blocked by %+v", recs[0].Blockers)
	}
}

func TestRecommend_Window(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	req := resolve(e, nil, nil)
	// Stage a is still open but two stages behind c.
	recs := e.Recommend(Completed(1), "c", req, 0)
	for _, r := range recs {
		if r.StageID == "a" {
			t.Errorf("item %d from a stage two back was recommended", r.ItemID)
		}
	}
	if diff := cmp.Diff([]int{4, 7, 5, 6, 8, 9}, recIDs(recs)); diff != "" {
		t.Errorf("recommended items mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommend_Limit(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	req := resolve(e, nil, nil)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"limit below candidates", 2, 2},
		{"limit above candidates", 10, 3},
		{"zero is unlimited", 0, 3},
		{"negative is unlimited", -1, 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := len(e.Recommend(Completed(), "a", req, tt.limit)); got != tt.want {
				t.Errorf("len(Recommend(limit=%d)) = %d, want %d", tt.limit, got, tt.want)
			}
		})
	}
}

func TestRecommend_NothingLeft(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	req := resolve(e, nil, nil)
	done := Completed(1, 2, 3, 4, 5, 6, 7, 8, 9)
	if recs := e.Recommend(done, "c", req, 0); len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recIDs(recs))
	}
}

func TestSortRecommendations(t *testing.T) {
	t.Parallel()
	recs := []Recommendation{
		{ItemID: 1, Priority: PriorityCritical, Blocked: true},
		{ItemID: 2, Priority: PriorityMedium},
		{ItemID: 3, Priority: PriorityHigh, Unlocks: []int{9}},
		{ItemID: 4, Priority: PriorityHigh, Unlocks: []int{8, 9}},
		{ItemID: 5, Priority: PriorityHigh, Blocked: true},
		{ItemID: 6, Priority: PriorityHigh},
		{ItemID: 7, Priority: PriorityCritical, Blocked: true},
	}
	SortRecommendations(recs)

	if diff := cmp.Diff([]int{4, 3, 6, 2, 1, 7, 5}, recIDs(recs)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	seenBlocked := false
	for _, r := range recs {
		if r.Blocked {
			seenBlocked = true
		} else if seenBlocked {
			t.Errorf("unblocked item %d sorted after a blocked one", r.ItemID)
		}
	}
}
