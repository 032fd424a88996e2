package guidance

// Priority ranks how urgently a recommended item should be picked up.
type Priority string

const (
	// PriorityCritical marks foundational items that gate everything else.
	PriorityCritical Priority = "critical"
	// PriorityHigh marks items that close a stage, unlock many others, or
	// belong to the late, investment-readiness part of the curriculum.
	PriorityHigh Priority = "high"
	// PriorityMedium is the default.
	PriorityMedium Priority = "medium"
)

// Rank orders priorities for sorting; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

// Candidate is the view of an item that priority rules match against.
type Candidate struct {
	ItemID int
	// Position is the item's rank among all items in ascending ID order.
	Position int
	// Total is the number of items in the curriculum.
	Total int
	// StageRemaining is how many required, incomplete items the item's stage
	// would still hold once this item is done.
	StageRemaining int
	// Unlocks lists required, incomplete items that declare this one.
	Unlocks []int
}

// PriorityRule assigns Priority to candidates matching Match.
type PriorityRule struct {
	Name     string
	Priority Priority
	Match    func(Candidate) bool
}

// DefaultPriorityRules returns the production rule chain. Rules are
// evaluated top-down and the first match wins; the last rule matches
// everything.
func DefaultPriorityRules() []PriorityRule {
	return []PriorityRule{
		{
			Name:     "foundation",
			Priority: PriorityCritical,
			Match:    func(c Candidate) bool { return c.Position >= 0 && c.Position < 2 },
		},
		{
			Name:     "stage-gate",
			Priority: PriorityHigh,
			Match:    func(c Candidate) bool { return c.StageRemaining <= 2 },
		},
		{
			Name:     "multiplier",
			Priority: PriorityHigh,
			Match:    func(c Candidate) bool { return len(c.Unlocks) >= 3 },
		},
		{
			Name:     "late-stage",
			Priority: PriorityHigh,
			Match:    func(c Candidate) bool { return c.Total > 0 && c.Position*4 >= c.Total*3 },
		},
		{
			Name:     "default",
			Priority: PriorityMedium,
			Match:    func(Candidate) bool { return true },
		},
	}
}

// Prioritize returns the priority and rule name of the first rule matching
// c. With no matching rule it falls back to PriorityMedium.
func Prioritize(rules []PriorityRule, c Candidate) (Priority, string) {
	for _, r := range rules {
		if r.Match(c) {
			return r.Priority, r.Name
		}
	}
	return PriorityMedium, "default"
}
