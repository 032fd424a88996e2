package guidance

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/compass/internal/project"
	"github.com/papapumpkin/compass/internal/requirement"
)

// Input is everything a diagnosis needs beyond the curriculum itself.
type Input struct {
	ProjectID   string
	Defaults    map[int]bool // global requirement defaults
	Overrides   map[int]bool // project requirement overrides
	Completions []project.Completion
	Now         time.Time
	Limit       int // recommendations to return; <= 0 uses DefaultLimit
}

// PathwayStage summarizes one stage of the project's pathway.
type PathwayStage struct {
	StageID       string
	Title         string
	Required      int
	Completed     int
	Percent       int
	Complete      bool
	Current       bool
	RemainingDays *int // nil when velocity is unknown and work remains
}

// Result is a complete diagnosis. It is computed fresh per request and
// never cached across completion changes.
type Result struct {
	ProjectID         string
	CurriculumVersion string
	CurrentStage      string
	CurrentStageTitle string
	Progress          int // percent of required items complete
	Pathway           []PathwayStage
	Actions           []Recommendation
	Velocity          Velocity
	Forecast          Projection
	Blockers          []ExternalBlocker
	GeneratedAt       time.Time
}

// Diagnose resolves requirements, locates the current stage, builds the
// pathway, ranks next actions, measures velocity, forecasts completion and
// evaluates the external blocker rules.
func (e *Engine) Diagnose(in Input) Result {
	c := e.curriculum
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := requirement.Resolve(c.IDs(),
		requirement.Layer{Name: requirement.LayerGlobal, Values: in.Defaults},
		requirement.Layer{Name: requirement.LayerProject, Values: in.Overrides},
	)
	done, completedAt := e.collapseCompletions(in.ProjectID, in.Completions)
	current := e.CurrentStage(req, done)

	var requiredTotal, requiredDone int
	var stamps []time.Time
	for _, id := range req.RequiredIDs() {
		requiredTotal++
		if done.Has(id) {
			requiredDone++
			if t, ok := completedAt[id]; ok {
				stamps = append(stamps, t)
			}
		}
	}
	velocity := ComputeVelocity(stamps)

	var pathway []PathwayStage
	for _, s := range c.Stages() {
		required, completed := stageCounts(s, req, done)
		pathway = append(pathway, PathwayStage{
			StageID:       s.ID,
			Title:         s.Title,
			Required:      required,
			Completed:     completed,
			Percent:       percent(completed, required),
			Complete:      completed == required,
			Current:       s.ID == current.ID,
			RemainingDays: Forecast(completed, required, velocity, now).Days,
		})
	}

	return Result{
		ProjectID:         in.ProjectID,
		CurriculumVersion: c.Version(),
		CurrentStage:      current.ID,
		CurrentStageTitle: current.Title,
		Progress:          percent(requiredDone, requiredTotal),
		Pathway:           pathway,
		Actions:           e.Recommend(done, current.ID, req, limit),
		Velocity:          velocity,
		Forecast:          Forecast(requiredDone, requiredTotal, velocity, now),
		Blockers:          evaluateBlockers(c, req, done, requiredDone),
		GeneratedAt:       now,
	}
}

// collapseCompletions reduces raw records to a completion set and the
// authoritative (earliest) completion time per item. Records for items the
// curriculum does not know are ignored.
func (e *Engine) collapseCompletions(projectID string, records []project.Completion) (CompletionSet, map[int]time.Time) {
	done := make(CompletionSet, len(records))
	at := make(map[int]time.Time, len(records))
	for _, r := range records {
		if !r.Complete {
			continue
		}
		if _, ok := e.curriculum.Item(r.ItemID); !ok {
			e.logger.Debug("ignoring completion for unknown item",
				zap.String("project", projectID),
				zap.Int("item", r.ItemID))
			continue
		}
		done[r.ItemID] = true
		if r.CompletedAt == nil || r.CompletedAt.IsZero() {
			continue
		}
		if prev, ok := at[r.ItemID]; !ok || r.CompletedAt.Before(prev) {
			at[r.ItemID] = *r.CompletedAt
		}
	}
	return done, at
}

// percent returns completed/total as a rounded percentage; an empty total
// counts as fully complete.
func percent(completed, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}
