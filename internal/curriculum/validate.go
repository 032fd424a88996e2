package curriculum

import (
	"fmt"

	"github.com/papapumpkin/compass/internal/dag"
)

// Validate checks a definition for structural correctness: required
// fields, unique IDs, known stages and blocker targets. When the structure
// is sound it also lints the annotation graph, reporting dangling
// references and cycles as warnings.
func Validate(d *Definition) []ValidationError {
	var errs []ValidationError
	m := d.Manifest

	if m.Curriculum.Name == "" {
		errs = append(errs, ValidationError{
			Category:   ValCatMissingField,
			SourceFile: ManifestFile,
			Field:      "curriculum.name",
			Err:        fmt.Errorf("%w: curriculum.name", ErrMissingField),
		})
	}
	if len(m.Stages) == 0 {
		errs = append(errs, ValidationError{
			Category:   ValCatMissingField,
			SourceFile: ManifestFile,
			Field:      "stages",
			Err:        ErrEmpty,
		})
	}

	stageIDs := make(map[string]bool)
	for _, s := range m.Stages {
		if s.ID == "" {
			errs = append(errs, ValidationError{
				Category:   ValCatMissingField,
				SourceFile: ManifestFile,
				Field:      "stages.id",
				Err:        fmt.Errorf("%w: stages.id", ErrMissingField),
			})
			continue
		}
		if stageIDs[s.ID] {
			errs = append(errs, ValidationError{
				Category:   ValCatDuplicateID,
				SourceFile: ManifestFile,
				Field:      "stages.id",
				Err:        fmt.Errorf("%w: %q", ErrDuplicateStage, s.ID),
			})
		}
		stageIDs[s.ID] = true
	}

	var all []Item
	for _, s := range m.Stages {
		all = append(all, s.Items...)
	}
	for _, it := range d.Files {
		if it.Stage == "" {
			errs = append(errs, ValidationError{
				Category:   ValCatMissingField,
				ItemID:     it.ID,
				SourceFile: it.SourceFile,
				Field:      "stage",
				Err:        fmt.Errorf("%w: stage", ErrMissingField),
			})
		} else if !stageIDs[it.Stage] {
			errs = append(errs, ValidationError{
				Category:   ValCatUnknownStage,
				ItemID:     it.ID,
				SourceFile: it.SourceFile,
				Field:      "stage",
				Err:        fmt.Errorf("%w: %q", ErrUnknownStage, it.Stage),
			})
		}
		all = append(all, it)
	}

	seen := make(map[int]string) // id → source file
	for _, it := range all {
		if it.ID <= 0 {
			errs = append(errs, ValidationError{
				Category:   ValCatBoundsViolation,
				SourceFile: it.SourceFile,
				Field:      "id",
				Err:        fmt.Errorf("id must be > 0, got %d", it.ID),
			})
			continue
		}
		if it.Title == "" {
			errs = append(errs, ValidationError{
				Category:   ValCatMissingField,
				ItemID:     it.ID,
				SourceFile: it.SourceFile,
				Field:      "title",
				Err:        fmt.Errorf("%w: title", ErrMissingField),
			})
		}
		if prev, ok := seen[it.ID]; ok {
			errs = append(errs, ValidationError{
				Category:   ValCatDuplicateID,
				ItemID:     it.ID,
				SourceFile: it.SourceFile,
				Err:        fmt.Errorf("%w: %d already defined in %s", ErrDuplicateID, it.ID, prev),
			})
		}
		seen[it.ID] = it.SourceFile
	}

	for _, r := range m.Blockers {
		if _, ok := seen[r.ItemID]; !ok {
			errs = append(errs, ValidationError{
				Category:   ValCatUnknownItem,
				SourceFile: ManifestFile,
				Field:      "blockers.item",
				Err:        fmt.Errorf("%w: blocker %q names item %d", ErrUnknownItem, r.Name, r.ItemID),
			})
		}
		if r.MinCompleted < 0 {
			errs = append(errs, ValidationError{
				Category:   ValCatBoundsViolation,
				SourceFile: ManifestFile,
				Field:      "blockers.min_completed",
				Err:        fmt.Errorf("blockers.min_completed must be >= 0, got %d", r.MinCompleted),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return append(errs, lintGraph(all)...)
}

// lintGraph reports annotation references the engine will silently drop
// and items caught in reference cycles.
func lintGraph(items []Item) []ValidationError {
	sources := make([]dag.Source, len(items))
	files := make(map[int]string, len(items))
	for i, it := range items {
		sources[i] = dag.Source{ID: it.ID, FeedsInto: it.FeedsInto}
		files[it.ID] = it.SourceFile
	}
	g := dag.Build(sources)

	var warns []ValidationError
	for _, e := range g.Dropped() {
		warns = append(warns, ValidationError{
			Category:   ValCatDanglingRef,
			ItemID:     e.From,
			SourceFile: files[e.From],
			Field:      "feeds_into",
			Err:        fmt.Errorf("%w: #%d", ErrDanglingRef, e.To),
		})
	}
	if _, err := g.TopologicalSort(); err != nil {
		for _, id := range g.Cycles() {
			warns = append(warns, ValidationError{
				Category:   ValCatCycle,
				ItemID:     id,
				SourceFile: files[id],
				Field:      "feeds_into",
				Err:        err,
			})
		}
	}
	return warns
}
