package guidance

import (
	"fmt"
	"sort"

	"github.com/papapumpkin/compass/internal/requirement"
)

// BlockerKind distinguishes why an item is blocked.
type BlockerKind string

const (
	// BlockerDependency is a declared prerequisite that is still open.
	BlockerDependency BlockerKind = "dependency"
	// BlockerSequence is the preceding item of the same stage still being open.
	BlockerSequence BlockerKind = "sequence"
)

// Blocker names an open item standing in the way of a recommendation.
type Blocker struct {
	ItemID      int
	Title       string
	Kind        BlockerKind
	Description string
}

// Recommendation is one candidate next action.
type Recommendation struct {
	ItemID       int
	Title        string
	StageID      string
	Priority     Priority
	Rule         string // name of the priority rule that fired
	Reason       string
	Blocked      bool
	Blockers     []Blocker
	Dependencies []int // prerequisites declared by the item's annotation
	Unlocks      []int
	Estimate     string
}

// Recommend ranks the required, incomplete items inside the working window
// of currentStageID. Blocked items are still returned, after every
// unblocked one. A limit of zero or less returns every candidate.
// The item declared just before another in its stage blocks it only while
// that predecessor is required and incomplete; an optional predecessor
// never blocks.
func (e *Engine) Recommend(done CompletionSet, currentStageID string, req requirement.Map, limit int) []Recommendation {
	c := e.curriculum
	g := c.Graph()
	total := c.Len()

	var recs []Recommendation
	for _, it := range c.Items() {
		if done.Has(it.ID) || !req.Required(it.ID) {
			continue
		}
		if !e.IsAccessible(it.ID, currentStageID).Accessible {
			continue
		}

		rec := Recommendation{
			ItemID:   it.ID,
			Title:    it.Title,
			StageID:  it.Stage,
			Estimate: c.EstimateFor(it.ID),
		}

		for _, dep := range g.Prerequisites(it.ID) {
			rec.Dependencies = append(rec.Dependencies, dep.Target)
			if !req.Required(dep.Target) || done.Has(dep.Target) {
				continue
			}
			pre, _ := c.Item(dep.Target)
			rec.Blockers = append(rec.Blockers, Blocker{
				ItemID:      dep.Target,
				Title:       pre.Title,
				Kind:        BlockerDependency,
				Description: dep.Description,
			})
		}
		if prev, ok := c.PreviousInStage(it.ID); ok && req.Required(prev.ID) && !done.Has(prev.ID) && !hasBlocker(rec.Blockers, prev.ID) {
			rec.Blockers = append(rec.Blockers, Blocker{
				ItemID: prev.ID,
				Title:  prev.Title,
				Kind:   BlockerSequence,
			})
		}
		rec.Blocked = len(rec.Blockers) > 0

		for _, id := range g.Dependents(it.ID) {
			if req.Required(id) && !done.Has(id) {
				rec.Unlocks = append(rec.Unlocks, id)
			}
		}

		stage, _ := c.StageOf(it.ID)
		required, completed := stageCounts(stage, req, done)
		rec.Priority, rec.Rule = Prioritize(e.rules, Candidate{
			ItemID:         it.ID,
			Position:       c.Position(it.ID),
			Total:          total,
			StageRemaining: required - completed - 1,
			Unlocks:        rec.Unlocks,
		})
		rec.Reason = reason(rec)

		recs = append(recs, rec)
	}

	SortRecommendations(recs)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// SortRecommendations orders recommendations: unblocked first, then by
// priority, then by descending unlock count, then by ascending item ID.
func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recommendationLess(recs[i], recs[j])
	})
}

func recommendationLess(a, b Recommendation) bool {
	if a.Blocked != b.Blocked {
		return !a.Blocked
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	if len(a.Unlocks) != len(b.Unlocks) {
		return len(a.Unlocks) > len(b.Unlocks)
	}
	return a.ItemID < b.ItemID
}

// reason composes the human-readable justification for rec.
func reason(rec Recommendation) string {
	switch {
	case rec.Blocked:
		b := rec.Blockers[0]
		return fmt.Sprintf("Blocked: complete #%d %s first", b.ItemID, b.Title)
	case len(rec.Unlocks) > 0:
		return fmt.Sprintf("Unlocks %d downstream item(s)", len(rec.Unlocks))
	case rec.Priority == PriorityCritical:
		return "Foundation: must complete before proceeding"
	default:
		return "Next in sequence"
	}
}

func hasBlocker(blockers []Blocker, id int) bool {
	for _, b := range blockers {
		if b.ItemID == id {
			return true
		}
	}
	return false
}
