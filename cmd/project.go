package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/compass/internal/telemetry"
	"github.com/papapumpkin/compass/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects and their progress (create, list, complete, require)",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Register a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show a project's completion records and requirement overrides",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectCompleteCmd = &cobra.Command{
	Use:   "complete <project> <item>...",
	Short: "Mark items complete",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProjectComplete,
}

var projectReopenCmd = &cobra.Command{
	Use:   "reopen <project> <item>...",
	Short: "Clear the completion flag on items",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProjectReopen,
}

var projectRequireCmd = &cobra.Command{
	Use:   "require <project> <item>...",
	Short: "Mark items required for this project",
	Args:  cobra.MinimumNArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setOverrides(cmd, args, true) },
}

var projectUnrequireCmd = &cobra.Command{
	Use:   "unrequire <project> <item>...",
	Short: "Mark items optional for this project",
	Args:  cobra.MinimumNArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setOverrides(cmd, args, false) },
}

var projectInheritCmd = &cobra.Command{
	Use:   "inherit <project> <item>...",
	Short: "Drop project overrides so the global defaults apply",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProjectInherit,
}

func init() {
	projectCompleteCmd.Flags().String("at", "", "completion time (RFC 3339 or YYYY-MM-DD, default now)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectCompleteCmd)
	projectCmd.AddCommand(projectReopenCmd)
	projectCmd.AddCommand(projectRequireCmd)
	projectCmd.AddCommand(projectUnrequireCmd)
	projectCmd.AddCommand(projectInheritCmd)
	rootCmd.AddCommand(projectCmd)
}

// withEnv opens the environment, runs fn and reports any error.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env, printer *ui.Printer) error) error {
	printer := ui.New()
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	defer e.close()
	if err := fn(ctx, e, printer); err != nil {
		printer.Error(err.Error())
		return err
	}
	return nil
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		p, err := e.store.CreateProject(ctx, args[0])
		if err != nil {
			return err
		}
		logger.Info("project created", zap.String("project", p.ID), zap.String("name", p.Name))
		printer.Success(fmt.Sprintf("project %q created (%s)", p.Name, p.ID))
		return nil
	})
}

func runProjectList(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		projects, err := e.store.ListProjects(ctx)
		if err != nil {
			return err
		}
		printer.ProjectList(projects)
		return nil
	})
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		snap, err := e.store.LoadProject(ctx, args[0])
		if err != nil {
			return err
		}
		printer.ProjectShow(snap, e.engine.Curriculum())
		return nil
	})
}

func runProjectComplete(cmd *cobra.Command, args []string) error {
	at := time.Time{}
	if s, _ := cmd.Flags().GetString("at"); s != "" {
		t, err := parseWhen(s)
		if err != nil {
			return err
		}
		at = t
	}
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		p, err := e.store.Project(ctx, args[0])
		if err != nil {
			return err
		}
		ids, err := parseItemIDs(e.engine.Curriculum(), args[1:])
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := e.store.Complete(ctx, p.ID, id, at); err != nil {
				return err
			}
			e.emit(telemetry.Event{Kind: telemetry.KindCompletion, ProjectID: p.ID, ItemID: id})
		}
		printer.Success(fmt.Sprintf("%s: %d item(s) complete", p.Name, len(ids)))
		return nil
	})
}

func runProjectReopen(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		p, err := e.store.Project(ctx, args[0])
		if err != nil {
			return err
		}
		ids, err := parseItemIDs(e.engine.Curriculum(), args[1:])
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := e.store.Reopen(ctx, p.ID, id); err != nil {
				return err
			}
			e.emit(telemetry.Event{Kind: telemetry.KindReopen, ProjectID: p.ID, ItemID: id})
		}
		printer.Success(fmt.Sprintf("%s: %d item(s) reopened", p.Name, len(ids)))
		return nil
	})
}

func setOverrides(cmd *cobra.Command, args []string, required bool) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		p, err := e.store.Project(ctx, args[0])
		if err != nil {
			return err
		}
		ids, err := parseItemIDs(e.engine.Curriculum(), args[1:])
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := e.store.SetOverride(ctx, p.ID, id, required); err != nil {
				return err
			}
			e.emit(telemetry.Event{
				Kind:      telemetry.KindRequirement,
				ProjectID: p.ID,
				ItemID:    id,
				Data:      map[string]any{"scope": "project", "required": required},
			})
		}
		printer.Success(fmt.Sprintf("%s: %d item(s) now %s", p.Name, len(ids), requiredWord(required)))
		return nil
	})
}

func runProjectInherit(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		p, err := e.store.Project(ctx, args[0])
		if err != nil {
			return err
		}
		ids, err := parseItemIDs(e.engine.Curriculum(), args[1:])
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := e.store.ClearOverride(ctx, p.ID, id); err != nil {
				return err
			}
			e.emit(telemetry.Event{
				Kind:      telemetry.KindRequirement,
				ProjectID: p.ID,
				ItemID:    id,
				Data:      map[string]any{"scope": "project", "cleared": true},
			})
		}
		printer.Success(fmt.Sprintf("%s: %d override(s) cleared", p.Name, len(ids)))
		return nil
	})
}

func requiredWord(required bool) string {
	if required {
		return "required"
	}
	return "optional"
}

// parseWhen accepts RFC 3339 timestamps and bare dates.
func parseWhen(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
}
