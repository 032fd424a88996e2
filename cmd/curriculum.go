package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/compass/internal/config"
	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/ui"
)

var curriculumCmd = &cobra.Command{
	Use:   "curriculum",
	Short: "Inspect curriculum definitions (validate, show)",
}

var curriculumValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate a curriculum directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCurriculumValidate,
}

var curriculumShowCmd = &cobra.Command{
	Use:   "show [dir]",
	Short: "List a curriculum's stages, items and prerequisites",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCurriculumShow,
}

func init() {
	curriculumCmd.AddCommand(curriculumValidateCmd)
	curriculumCmd.AddCommand(curriculumShowCmd)
	rootCmd.AddCommand(curriculumCmd)
}

// curriculumDir returns the directory argument, or the configured one.
func curriculumDir(args []string) (config.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, "", err
	}
	if len(args) > 0 {
		return cfg, args[0], nil
	}
	return cfg, cfg.CurriculumDir, nil
}

func runCurriculumValidate(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	_, dir, err := curriculumDir(args)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	def, err := curriculum.ReadDir(dir)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	errs := curriculum.Validate(def)
	printer.ValidateResult(dir, countItems(def), errs)
	var hard int
	for i := range errs {
		if !errs[i].IsWarning() {
			hard++
		}
	}
	if hard > 0 {
		return fmt.Errorf("validation failed with %d error(s)", hard)
	}
	return nil
}

func runCurriculumShow(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	cfg, dir, err := curriculumDir(args)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	c, err := loadCurriculum(cfg, dir)
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	printer.CurriculumShow(c)
	return nil
}

func countItems(def *curriculum.Definition) int {
	n := len(def.Files)
	for _, s := range def.Manifest.Stages {
		n += len(s.Items)
	}
	return n
}
