package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/compass/internal/telemetry"
	"github.com/papapumpkin/compass/internal/ui"
)

var requireCmd = &cobra.Command{
	Use:   "require",
	Short: "Manage global requirement defaults shared by every project",
}

var requireSetCmd = &cobra.Command{
	Use:   "set <item> <true|false>",
	Short: "Set whether an item is required by default",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequireSet,
}

var requireClearCmd = &cobra.Command{
	Use:   "clear <item>...",
	Short: "Remove global defaults so items are required again",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRequireClear,
}

var requireListCmd = &cobra.Command{
	Use:   "list",
	Short: "List global requirement defaults",
	Args:  cobra.NoArgs,
	RunE:  runRequireList,
}

func init() {
	requireCmd.AddCommand(requireSetCmd)
	requireCmd.AddCommand(requireClearCmd)
	requireCmd.AddCommand(requireListCmd)
	rootCmd.AddCommand(requireCmd)
}

func runRequireSet(cmd *cobra.Command, args []string) error {
	required, err := strconv.ParseBool(args[1])
	if err != nil {
		return fmt.Errorf("invalid requirement %q: want true or false", args[1])
	}
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		ids, err := parseItemIDs(e.engine.Curriculum(), args[:1])
		if err != nil {
			return err
		}
		if err := e.store.SetDefault(ctx, ids[0], required); err != nil {
			return err
		}
		e.emit(telemetry.Event{
			Kind:   telemetry.KindRequirement,
			ItemID: ids[0],
			Data:   map[string]any{"scope": "global", "required": required},
		})
		printer.Success(fmt.Sprintf("item %d is %s by default", ids[0], requiredWord(required)))
		return nil
	})
}

func runRequireClear(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		ids, err := parseItemIDs(e.engine.Curriculum(), args)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := e.store.ClearDefault(ctx, id); err != nil {
				return err
			}
			e.emit(telemetry.Event{
				Kind:   telemetry.KindRequirement,
				ItemID: id,
				Data:   map[string]any{"scope": "global", "cleared": true},
			})
		}
		printer.Success(fmt.Sprintf("%d default(s) cleared", len(ids)))
		return nil
	})
}

func runRequireList(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env, printer *ui.Printer) error {
		defaults, err := e.store.Defaults(ctx)
		if err != nil {
			return err
		}
		printer.Requirements(defaults, e.engine.Curriculum())
		return nil
	})
}
