package guidance

import (
	"testing"
	"time"

	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/project"
	"github.com/papapumpkin/compass/internal/requirement"
)

// stageSpec is (stage id, item ids, annotations by item id).
type stageSpec struct {
	id    string
	items []int
	notes map[int]string
}

// buildEngine builds an engine over stages with items titled "item N".
func buildEngine(t *testing.T, specs []stageSpec, opts ...curriculum.Option) *Engine {
	t.Helper()
	stages := make([]curriculum.Stage, len(specs))
	for i, s := range specs {
		stages[i] = curriculum.Stage{ID: s.id, Title: "Stage " + s.id}
		for _, id := range s.items {
			stages[i].Items = append(stages[i].Items, curriculum.Item{
				ID:        id,
				Title:     itemTitle(id),
				FeedsInto: s.notes[id],
			})
		}
	}
	c, err := curriculum.New(stages, opts...)
	if err != nil {
		t.Fatalf("curriculum.New: %v", err)
	}
	return New(c)
}

func itemTitle(id int) string {
	return "item " + string(rune('0'+id/10)) + string(rune('0'+id%10))
}

// threeByThree is the 3 stages × 3 items curriculum with ids 1–9.
func threeByThree(t *testing.T, opts ...curriculum.Option) *Engine {
	t.Helper()
	return buildEngine(t, []stageSpec{
		{id: "a", items: []int{1, 2, 3}},
		{id: "b", items: []int{4, 5, 6}},
		{id: "c", items: []int{7, 8, 9}},
	}, opts...)
}

// resolve resolves requirements over e's curriculum.
func resolve(e *Engine, global, override map[int]bool) requirement.Map {
	return requirement.Resolve(e.Curriculum().IDs(),
		requirement.Layer{Name: requirement.LayerGlobal, Values: global},
		requirement.Layer{Name: requirement.LayerProject, Values: override},
	)
}

func recIDs(recs []Recommendation) []int {
	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.ItemID
	}
	return ids
}

var epoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func day(n int) *time.Time {
	t := epoch.AddDate(0, 0, n)
	return &t
}

// completions marks ids complete at the given day offsets (same index).
func completions(ids []int, days []int) []project.Completion {
	out := make([]project.Completion, len(ids))
	for i, id := range ids {
		out[i] = project.Completion{ItemID: id, Complete: true}
		if i < len(days) {
			out[i].CompletedAt = day(days[i])
		}
	}
	return out
}
