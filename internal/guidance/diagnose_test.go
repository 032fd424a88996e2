package guidance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/project"
)

func TestDiagnose_MidJourney(t *testing.T) {
	t.Parallel()
	e := threeByThree(t, curriculum.WithBlockerRules([]curriculum.BlockerRule{{
		Name:         "legal",
		MinCompleted: 2,
		ItemID:       9,
		Description:  "Formation paperwork runs outside the curriculum",
		Action:       "Engage counsel",
	}}))

	res := e.Diagnose(Input{
		ProjectID: "p1",
		Defaults:  map[int]bool{3: false},
		Completions: []project.Completion{
			// Duplicate record for item 1; the earlier one is authoritative.
			{ItemID: 1, Complete: true, CompletedAt: day(7)},
			{ItemID: 1, Complete: true, CompletedAt: day(0)},
			{ItemID: 2, Complete: true, CompletedAt: day(14)},
			{ItemID: 4, Complete: false},
			{ItemID: 42, Complete: true, CompletedAt: day(1)},
		},
		Now: *day(14),
	})

	if res.ProjectID != "p1" || res.CurriculumVersion != e.Curriculum().Version() {
		t.Errorf("identity = (%q, %q)", res.ProjectID, res.CurriculumVersion)
	}
	if res.CurrentStage != "b" || res.CurrentStageTitle != "Stage b" {
		t.Errorf("current stage = (%q, %q), want (b, Stage b)", res.CurrentStage, res.CurrentStageTitle)
	}
	if res.Progress != 25 {
		t.Errorf("Progress = %d, want 25", res.Progress)
	}
	if diff := cmp.Diff([]int{4, 5, 6}, recIDs(res.Actions)); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if res.Velocity.ItemsPerWeek != 1 || res.Velocity.Count != 2 {
		t.Errorf("velocity = %+v, want 1/week over 2", res.Velocity)
	}
	if res.Forecast.Days == nil || *res.Forecast.Days != 42 {
		t.Errorf("forecast days = %v, want 42", res.Forecast.Days)
	}
	if !res.GeneratedAt.Equal(*day(14)) {
		t.Errorf("GeneratedAt = %v", res.GeneratedAt)
	}

	wantPathway := []PathwayStage{
		{StageID: "a", Title: "Stage a", Required: 2, Completed: 2, Percent: 100, Complete: true, RemainingDays: intPtr(0)},
		{StageID: "b", Title: "Stage b", Required: 3, Percent: 0, Current: true, RemainingDays: intPtr(21)},
		{StageID: "c", Title: "Stage c", Required: 3, Percent: 0, RemainingDays: intPtr(21)},
	}
	if diff := cmp.Diff(wantPathway, res.Pathway); diff != "" {
		t.Errorf("pathway mismatch (-want +got):\n%s", diff)
	}

	wantBlockers := []ExternalBlocker{{
		Rule:        "legal",
		ItemID:      9,
		Title:       itemTitle(9),
		Description: "Formation paperwork runs outside the curriculum",
		Action:      "Engage counsel",
	}}
	if diff := cmp.Diff(wantBlockers, res.Blockers); diff != "" {
		t.Errorf("blockers mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnose_FreshProject(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	res := e.Diagnose(Input{ProjectID: "p", Now: *day(0)})

	if res.CurrentStage != "a" || res.Progress != 0 {
		t.Errorf("stage/progress = (%q, %d)", res.CurrentStage, res.Progress)
	}
	if res.Velocity.LastCompletedAt != nil || res.Velocity.ItemsPerWeek != 0 {
		t.Errorf("velocity = %+v, want zero", res.Velocity)
	}
	if res.Forecast.Days != nil || res.Forecast.Date != nil {
		t.Errorf("forecast = %+v, want none", res.Forecast)
	}
	for _, s := range res.Pathway {
		if s.RemainingDays != nil {
			t.Errorf("stage %s RemainingDays = %d, want nil", s.StageID, *s.RemainingDays)
		}
	}
	if len(res.Blockers) != 0 {
		t.Errorf("blockers = %+v", res.Blockers)
	}
}

func TestDiagnose_Finished(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	now := *day(60)
	res := e.Diagnose(Input{
		ProjectID:   "p",
		Completions: completions([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}, []int{0, 5, 10, 15, 20, 25, 30, 35, 40}),
		Now:         now,
	})

	if res.CurrentStage != "c" || res.Progress != 100 {
		t.Errorf("stage/progress = (%q, %d)", res.CurrentStage, res.Progress)
	}
	if len(res.Actions) != 0 {
		t.Errorf("actions = %v, want none", recIDs(res.Actions))
	}
	if res.Forecast.Days == nil || *res.Forecast.Days != 0 {
		t.Fatalf("forecast days = %v, want 0", res.Forecast.Days)
	}
	if !res.Forecast.Date.Equal(now) {
		t.Errorf("forecast date = %v, want %v", res.Forecast.Date, now)
	}
	if !res.Velocity.LastCompletedAt.Equal(*day(40)) {
		t.Errorf("last completed = %v", res.Velocity.LastCompletedAt)
	}
}

func TestDiagnose_OptionalCompletionsDoNotCount(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	res := e.Diagnose(Input{
		ProjectID:   "p",
		Overrides:   map[int]bool{7: false},
		Completions: completions([]int{7}, []int{0}),
		Now:         *day(1),
	})
	if res.Progress != 0 {
		t.Errorf("Progress = %d, want 0", res.Progress)
	}
	if res.Velocity.Count != 0 {
		t.Errorf("velocity counted an optional item: %+v", res.Velocity)
	}
}

func TestDiagnose_AllOptional(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	defaults := make(map[int]bool)
	for _, id := range e.Curriculum().IDs() {
		defaults[id] = false
	}
	res := e.Diagnose(Input{ProjectID: "p", Defaults: defaults, Now: *day(0)})

	if res.Progress != 100 || res.CurrentStage != "c" {
		t.Errorf("stage/progress = (%q, %d)", res.CurrentStage, res.Progress)
	}
	for _, s := range res.Pathway {
		if !s.Complete || s.Percent != 100 {
			t.Errorf("stage %s = %+v, want complete", s.StageID, s)
		}
	}
}

func TestDiagnose_Limit(t *testing.T) {
	t.Parallel()
	e := buildEngine(t, []stageSpec{
		{id: "a", items: []int{1, 2, 3, 4, 5, 6, 7, 8}},
	})

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{2, 2},
		{20, 8},
	}
	for _, tt := range tests {
		res := e.Diagnose(Input{ProjectID: "p", Now: *day(0), Limit: tt.limit})
		if len(res.Actions) != tt.want {
			t.Errorf("Limit %d: got %d actions, want %d", tt.limit, len(res.Actions), tt.want)
		}
	}
}

func TestDiagnose_Deterministic(t *testing.T) {
	t.Parallel()
	e := threeByThree(t)
	in := Input{
		ProjectID:   "p",
		Completions: completions([]int{1, 2}, []int{0, 3}),
		Now:         *day(10),
	}
	first := e.Diagnose(in)
	second := e.Diagnose(in)
	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("repeated diagnosis differs (-first +second):\n%s", diff)
	}
}
