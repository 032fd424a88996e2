package curriculum

// Manifest is parsed from curriculum.toml in the curriculum directory root.
type Manifest struct {
	Curriculum Info          `toml:"curriculum"`
	Stages     []StageSpec   `toml:"stages"`
	Blockers   []BlockerRule `toml:"blockers"`
}

// Info holds the curriculum's name and engine-wide fallbacks.
type Info struct {
	Name            string `toml:"name"`
	Description     string `toml:"description"`
	DefaultEstimate string `toml:"default_estimate"`
}

// StageSpec declares a stage and any items defined inline in the manifest.
type StageSpec struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
	Items []Item `toml:"items"`
}

// Item is the curriculum's atomic unit of work. It is parsed either from a
// [[stages.items]] table or from the TOML frontmatter of an *.md file.
type Item struct {
	ID        int      `toml:"id"`
	Title     string   `toml:"title"`
	Purpose   string   `toml:"purpose,omitempty"`
	FeedsInto string   `toml:"feeds_into,omitempty"` // free text with (#N) references
	Checklist []string `toml:"checklist,omitempty"`
	Estimate  string   `toml:"estimate,omitempty"` // "" = curriculum default
	Stage     string   `toml:"stage,omitempty"`    // required in *.md files, implied inline
	Order     int      `toml:"order,omitempty"`    // sort key for *.md items within a stage

	SourceFile string `toml:"-"` // relative path for error context
}

// Stage is an ordered group of items. Index is the stage's ordinal in the
// curriculum and defines previous/next adjacency.
type Stage struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
	Index int    `toml:"index"`
	Items []Item `toml:"items"`
}

// ItemIDs returns the stage's item IDs in declared order.
func (s Stage) ItemIDs() []int {
	ids := make([]int, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ID
	}
	return ids
}

// BlockerRule describes an out-of-band blocker: once at least MinCompleted
// required items are done, ItemID still being open surfaces the blocker.
type BlockerRule struct {
	Name         string `toml:"name"`
	MinCompleted int    `toml:"min_completed"`
	ItemID       int    `toml:"item"`
	Title        string `toml:"title"`
	Description  string `toml:"description"`
	Action       string `toml:"action"`
}
