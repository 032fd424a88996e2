package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/guidance"
	"github.com/papapumpkin/compass/internal/ui"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <project>",
	Short: "Show a project's stage, next actions, velocity and forecast",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagnoseCmd.Flags().Bool("json", false, "output the diagnosis as JSON to stdout")
	diagnoseCmd.Flags().Int("limit", 0, "number of next actions (default recommendation_limit)")
	diagnoseCmd.Flags().Bool("watch", false, "re-diagnose when the curriculum changes")
	diagnoseCmd.Flags().Duration("interval", 30*time.Second, "re-diagnose at this interval while watching")
	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	defer e.close()

	limit := e.cfg.RecommendationLimit
	if n, _ := cmd.Flags().GetInt("limit"); n > 0 {
		limit = n
	}
	svc := guidance.NewService(e.engine, e.store,
		guidance.WithEmitter(e.emitter),
		guidance.WithServiceLogger(logger),
		guidance.WithLimit(limit))

	ref := args[0]
	p, err := e.store.Project(ctx, ref)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	jsonFlag, _ := cmd.Flags().GetBool("json")
	show := func(res *guidance.Result) error {
		if jsonFlag {
			return writeDiagnosisJSON(os.Stdout, p.Name, res)
		}
		printer.Diagnosis(p.Name, res)
		return nil
	}

	res, err := svc.Diagnose(ctx, p.ID)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	if err := show(res); err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	return watchDiagnosis(ctx, e, svc, p.ID, interval, func(res *guidance.Result) error {
		if !jsonFlag {
			printer.Clear()
		}
		return show(res)
	})
}

// watchDiagnosis re-runs the diagnosis whenever the curriculum directory
// changes or interval elapses, until ctx is cancelled. A curriculum that
// fails to load leaves the previous version in service.
func watchDiagnosis(ctx context.Context, e *env, svc *guidance.Service, projectID string,
	interval time.Duration, show func(*guidance.Result) error) error {
	dir := e.cfg.CurriculumDir
	w, err := curriculum.NewWatcher(dir)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			engine, err := loadEngine(e.cfg, dir)
			if err != nil {
				logger.Warn("curriculum reload failed, keeping current version",
					zap.String("file", change.File), zap.Error(err))
				continue
			}
			svc.SetEngine(engine)
		case <-ticker.C:
		}

		res, err := svc.Diagnose(ctx, projectID)
		if err != nil {
			return err
		}
		if err := show(res); err != nil {
			return err
		}
	}
}

// diagnosisJSON is the structured representation of a diagnosis for --json output.
type diagnosisJSON struct {
	Project           string        `json:"project"`
	ProjectID         string        `json:"project_id"`
	CurriculumVersion string        `json:"curriculum_version"`
	CurrentStage      string        `json:"current_stage"`
	CurrentStageTitle string        `json:"current_stage_title"`
	Progress          int           `json:"progress"`
	Pathway           []pathwayJSON `json:"pathway"`
	Actions           []actionJSON  `json:"actions"`
	Velocity          velocityJSON  `json:"velocity"`
	Forecast          forecastJSON  `json:"forecast"`
	Blockers          []blockerJSON `json:"blockers,omitempty"`
	GeneratedAt       time.Time     `json:"generated_at"`
}

type pathwayJSON struct {
	StageID       string `json:"stage_id"`
	Title         string `json:"title"`
	Required      int    `json:"required"`
	Completed     int    `json:"completed"`
	Percent       int    `json:"percent"`
	Complete      bool   `json:"complete"`
	Current       bool   `json:"current"`
	RemainingDays *int   `json:"remaining_days"`
}

type actionJSON struct {
	ItemID       int                 `json:"item_id"`
	Title        string              `json:"title"`
	StageID      string              `json:"stage_id"`
	Priority     string              `json:"priority"`
	Rule         string              `json:"rule"`
	Reason       string              `json:"reason"`
	Blocked      bool                `json:"blocked"`
	Blockers     []actionBlockerJSON `json:"blockers,omitempty"`
	Dependencies []int               `json:"dependencies,omitempty"`
	Unlocks      []int               `json:"unlocks,omitempty"`
	Estimate     string              `json:"estimate"`
}

type actionBlockerJSON struct {
	ItemID      int    `json:"item_id"`
	Title       string `json:"title"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

type velocityJSON struct {
	ItemsPerWeek    float64    `json:"items_per_week"`
	LastCompletedAt *time.Time `json:"last_completed_at"`
}

type forecastJSON struct {
	Days *int       `json:"days"`
	Date *time.Time `json:"date"`
}

type blockerJSON struct {
	Rule        string `json:"rule"`
	ItemID      int    `json:"item_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action,omitempty"`
}

// writeDiagnosisJSON encodes res as indented JSON to w.
func writeDiagnosisJSON(w io.Writer, name string, res *guidance.Result) error {
	out := diagnosisJSON{
		Project:           name,
		ProjectID:         res.ProjectID,
		CurriculumVersion: res.CurriculumVersion,
		CurrentStage:      res.CurrentStage,
		CurrentStageTitle: res.CurrentStageTitle,
		Progress:          res.Progress,
		Pathway:           make([]pathwayJSON, 0, len(res.Pathway)),
		Actions:           make([]actionJSON, 0, len(res.Actions)),
		Velocity: velocityJSON{
			ItemsPerWeek:    res.Velocity.ItemsPerWeek,
			LastCompletedAt: res.Velocity.LastCompletedAt,
		},
		Forecast:    forecastJSON{Days: res.Forecast.Days, Date: res.Forecast.Date},
		GeneratedAt: res.GeneratedAt,
	}

	for _, s := range res.Pathway {
		out.Pathway = append(out.Pathway, pathwayJSON{
			StageID:       s.StageID,
			Title:         s.Title,
			Required:      s.Required,
			Completed:     s.Completed,
			Percent:       s.Percent,
			Complete:      s.Complete,
			Current:       s.Current,
			RemainingDays: s.RemainingDays,
		})
	}

	for _, a := range res.Actions {
		aj := actionJSON{
			ItemID:       a.ItemID,
			Title:        a.Title,
			StageID:      a.StageID,
			Priority:     string(a.Priority),
			Rule:         a.Rule,
			Reason:       a.Reason,
			Blocked:      a.Blocked,
			Dependencies: a.Dependencies,
			Unlocks:      a.Unlocks,
			Estimate:     a.Estimate,
		}
		for _, b := range a.Blockers {
			aj.Blockers = append(aj.Blockers, actionBlockerJSON{
				ItemID:      b.ItemID,
				Title:       b.Title,
				Kind:        string(b.Kind),
				Description: b.Description,
			})
		}
		out.Actions = append(out.Actions, aj)
	}

	for _, b := range res.Blockers {
		out.Blockers = append(out.Blockers, blockerJSON(b))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
