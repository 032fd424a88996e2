// Package project holds the per-project inputs to a diagnosis: requirement
// rows and completion records, as loaded from whatever store the caller uses.
package project

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a project cannot be located.
var ErrNotFound = errors.New("project not found")

// Project identifies a venture going through the curriculum.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Completion is a project's completion record for one item. CompletedAt is
// nil when the item was marked done without a timestamp.
type Completion struct {
	ItemID      int
	Complete    bool
	CompletedAt *time.Time
}

// Snapshot is everything needed to diagnose one project.
type Snapshot struct {
	Project     Project
	Defaults    map[int]bool // global requirement defaults
	Overrides   map[int]bool // this project's requirement overrides
	Completions []Completion
}
