// Package curriculum models the fixed, ordered set of stages and work items
// that projects progress through. A Curriculum is immutable once built; a
// changed definition produces a new value with a new Version.
package curriculum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/compass/internal/dag"
)

// DefaultEstimate is used for items that declare no estimate when the
// curriculum itself sets no default.
const DefaultEstimate = "1-2 weeks"

// Curriculum is the immutable, process-wide definition of stages and items.
// All accessors return copies, so a Curriculum may be shared freely between
// goroutines.
type Curriculum struct {
	name            string
	defaultEstimate string
	stages          []Stage
	items           []Item // ascending ID
	index           map[int]location
	stageIndex      map[string]int
	blockers        []BlockerRule
	graph           *dag.Graph
	version         string
}

// location is an item's stage ordinal and its position within that stage.
type location struct {
	stage int
	pos   int
}

// Option configures a Curriculum under construction.
type Option func(*Curriculum)

// WithName sets the display name.
func WithName(name string) Option {
	return func(c *Curriculum) { c.name = name }
}

// WithDefaultEstimate sets the duration estimate used for items without one.
func WithDefaultEstimate(estimate string) Option {
	return func(c *Curriculum) {
		if estimate != "" {
			c.defaultEstimate = estimate
		}
	}
}

// WithBlockerRules attaches out-of-band blocker rules.
func WithBlockerRules(rules []BlockerRule) Option {
	return func(c *Curriculum) {
		c.blockers = append([]BlockerRule(nil), rules...)
	}
}

// New builds a Curriculum from stages in their sequence order. Stage
// indices are assigned from slice position and the dependency graph is
// extracted once from the items' annotations.
func New(stages []Stage, opts ...Option) (*Curriculum, error) {
	if len(stages) == 0 {
		return nil, ErrEmpty
	}

	c := &Curriculum{
		defaultEstimate: DefaultEstimate,
		stages:          make([]Stage, len(stages)),
		index:           make(map[int]location),
		stageIndex:      make(map[string]int, len(stages)),
	}
	for _, opt := range opts {
		opt(c)
	}

	var sources []dag.Source
	for si, s := range stages {
		if _, dup := c.stageIndex[s.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStage, s.ID)
		}
		c.stageIndex[s.ID] = si

		stage := Stage{ID: s.ID, Title: s.Title, Index: si, Items: make([]Item, len(s.Items))}
		for pi, it := range s.Items {
			if _, dup := c.index[it.ID]; dup {
				return nil, fmt.Errorf("%w: %d", ErrDuplicateID, it.ID)
			}
			it.Stage = s.ID
			it = cloneItem(it)
			stage.Items[pi] = it
			c.index[it.ID] = location{stage: si, pos: pi}
			c.items = append(c.items, it)
			sources = append(sources, dag.Source{ID: it.ID, FeedsInto: it.FeedsInto})
		}
		c.stages[si] = stage
	}
	sort.Slice(c.items, func(i, j int) bool { return c.items[i].ID < c.items[j].ID })

	c.graph = dag.Build(sources)

	version, err := c.computeVersion()
	if err != nil {
		return nil, err
	}
	c.version = version
	return c, nil
}

// computeVersion hashes the canonical TOML encoding of the definition.
func (c *Curriculum) computeVersion() (string, error) {
	data, err := toml.Marshal(struct {
		Stages   []Stage       `toml:"stages"`
		Blockers []BlockerRule `toml:"blockers"`
		Estimate string        `toml:"default_estimate"`
	}{c.stages, c.blockers, c.defaultEstimate})
	if err != nil {
		return "", fmt.Errorf("curriculum: encode for version: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12], nil
}

// Name returns the display name.
func (c *Curriculum) Name() string { return c.name }

// Version returns a short content hash identifying this definition.
func (c *Curriculum) Version() string { return c.version }

// DefaultEstimate returns the estimate used for items that declare none.
func (c *Curriculum) DefaultEstimate() string { return c.defaultEstimate }

// Len returns the number of items.
func (c *Curriculum) Len() int { return len(c.items) }

// Graph returns the dependency graph extracted from the item annotations.
// The graph is read-only.
func (c *Curriculum) Graph() *dag.Graph { return c.graph }

// Stages returns all stages in sequence order.
func (c *Curriculum) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	for i, s := range c.stages {
		out[i] = copyStage(s)
	}
	return out
}

// Stage returns the stage at ordinal index.
func (c *Curriculum) Stage(index int) (Stage, bool) {
	if index < 0 || index >= len(c.stages) {
		return Stage{}, false
	}
	return copyStage(c.stages[index]), true
}

// Items returns every item in ascending ID order.
func (c *Curriculum) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = cloneItem(it)
	}
	return out
}

// IDs returns every item ID in ascending order.
func (c *Curriculum) IDs() []int {
	ids := make([]int, len(c.items))
	for i, it := range c.items {
		ids[i] = it.ID
	}
	return ids
}

// Item looks up an item by ID.
func (c *Curriculum) Item(id int) (Item, bool) {
	loc, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return cloneItem(c.stages[loc.stage].Items[loc.pos]), true
}

// StageOf returns the stage that owns item id.
func (c *Curriculum) StageOf(id int) (Stage, bool) {
	loc, ok := c.index[id]
	if !ok {
		return Stage{}, false
	}
	return copyStage(c.stages[loc.stage]), true
}

// StageIndex returns the ordinal of the stage with the given ID.
func (c *Curriculum) StageIndex(stageID string) (int, bool) {
	i, ok := c.stageIndex[stageID]
	return i, ok
}

// ItemStageIndex returns the ordinal of the stage owning item id.
func (c *Curriculum) ItemStageIndex(id int) (int, bool) {
	loc, ok := c.index[id]
	if !ok {
		return 0, false
	}
	return loc.stage, true
}

// Position returns id's rank among all items in ascending ID order, or -1
// for an unknown item.
func (c *Curriculum) Position(id int) int {
	i := sort.Search(len(c.items), func(i int) bool { return c.items[i].ID >= id })
	if i < len(c.items) && c.items[i].ID == id {
		return i
	}
	return -1
}

// PreviousInStage returns the item declared immediately before id within
// its own stage. The first item of a stage has no predecessor.
func (c *Curriculum) PreviousInStage(id int) (Item, bool) {
	loc, ok := c.index[id]
	if !ok || loc.pos == 0 {
		return Item{}, false
	}
	return cloneItem(c.stages[loc.stage].Items[loc.pos-1]), true
}

// EstimateFor returns the item's duration estimate, falling back to the
// curriculum default.
func (c *Curriculum) EstimateFor(id int) string {
	if it, ok := c.Item(id); ok && it.Estimate != "" {
		return it.Estimate
	}
	return c.defaultEstimate
}

// BlockerRules returns the out-of-band blocker rules.
func (c *Curriculum) BlockerRules() []BlockerRule {
	out := make([]BlockerRule, len(c.blockers))
	copy(out, c.blockers)
	return out
}

func copyStage(s Stage) Stage {
	items := make([]Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = cloneItem(it)
	}
	s.Items = items
	return s
}

// cloneItem detaches the item's checklist from the curriculum's storage.
func cloneItem(it Item) Item {
	if it.Checklist != nil {
		it.Checklist = append([]string(nil), it.Checklist...)
	}
	return it
}
