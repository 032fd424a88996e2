package guidance

import (
	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/requirement"
)

// Access describes whether an item is inside the working window.
type Access struct {
	Accessible    bool
	CurrentStage  bool
	PreviousStage bool
}

// IsAccessible reports whether itemID may be worked on while the project
// is in currentStageID. Only the current stage and the one immediately
// before it are open; earlier and later stages are closed whatever their
// completion state. Unknown items or stages are never accessible.
func (e *Engine) IsAccessible(itemID int, currentStageID string) Access {
	itemStage, ok := e.curriculum.ItemStageIndex(itemID)
	if !ok {
		return Access{}
	}
	current, ok := e.curriculum.StageIndex(currentStageID)
	if !ok {
		return Access{}
	}

	a := Access{
		CurrentStage:  itemStage == current,
		PreviousStage: itemStage == current-1,
	}
	a.Accessible = a.CurrentStage || a.PreviousStage
	return a
}

// CurrentStage returns the first stage whose required items are not all
// complete, or the last stage once everything required is done.
func (e *Engine) CurrentStage(req requirement.Map, done CompletionSet) curriculum.Stage {
	stages := e.curriculum.Stages()
	for _, s := range stages {
		if !stageComplete(s, req, done) {
			return s
		}
	}
	return stages[len(stages)-1]
}

// stageComplete reports whether every required item in s is done.
func stageComplete(s curriculum.Stage, req requirement.Map, done CompletionSet) bool {
	for _, it := range s.Items {
		if req.Required(it.ID) && !done.Has(it.ID) {
			return false
		}
	}
	return true
}

// stageCounts returns the number of required items in s and how many of
// them are complete.
func stageCounts(s curriculum.Stage, req requirement.Map, done CompletionSet) (required, completed int) {
	for _, it := range s.Items {
		if !req.Required(it.ID) {
			continue
		}
		required++
		if done.Has(it.ID) {
			completed++
		}
	}
	return required, completed
}
