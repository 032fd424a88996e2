package guidance

import (
	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/requirement"
)

// ExternalBlocker is an out-of-band obstacle surfaced by a blocker rule,
// typically work that happens outside the curriculum (legal, finance).
type ExternalBlocker struct {
	Rule        string
	ItemID      int
	Title       string
	Description string
	Action      string
}

// evaluateBlockers applies each rule: once at least MinCompleted required
// items are done, a required rule item that is still open surfaces.
func evaluateBlockers(c *curriculum.Curriculum, req requirement.Map, done CompletionSet, completedRequired int) []ExternalBlocker {
	var out []ExternalBlocker
	for _, r := range c.BlockerRules() {
		if completedRequired < r.MinCompleted {
			continue
		}
		it, ok := c.Item(r.ItemID)
		if !ok || !req.Required(r.ItemID) || done.Has(r.ItemID) {
			continue
		}
		title := r.Title
		if title == "" {
			title = it.Title
		}
		out = append(out, ExternalBlocker{
			Rule:        r.Name,
			ItemID:      r.ItemID,
			Title:       title,
			Description: r.Description,
			Action:      r.Action,
		})
	}
	return out
}
