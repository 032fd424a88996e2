package curriculum

import (
	"errors"
	"strconv"
)

// Sentinel errors for curriculum loading and validation.
var (
	// ErrNoManifest indicates no curriculum.toml was found in the directory.
	ErrNoManifest = errors.New("curriculum.toml not found in curriculum directory")
	// ErrEmpty indicates the curriculum declares no stages.
	ErrEmpty = errors.New("curriculum has no stages")
	// ErrDuplicateID indicates two or more items share the same ID.
	ErrDuplicateID = errors.New("duplicate item ID")
	// ErrDuplicateStage indicates two or more stages share the same ID.
	ErrDuplicateStage = errors.New("duplicate stage ID")
	// ErrUnknownStage indicates an item names a stage that does not exist.
	ErrUnknownStage = errors.New("item references unknown stage")
	// ErrUnknownItem indicates a blocker rule names an item that does not exist.
	ErrUnknownItem = errors.New("unknown item ID")
	// ErrMissingField indicates a required field (e.g. id, title) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDanglingRef indicates an annotation references an item that does not exist.
	ErrDanglingRef = errors.New("annotation references unknown item")
)

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	// ValCatMissingField indicates a required field is empty.
	ValCatMissingField ValidationCategory = "missing_field"
	// ValCatDuplicateID indicates a duplicated item or stage ID.
	ValCatDuplicateID ValidationCategory = "duplicate_id"
	// ValCatUnknownStage indicates an item placed in a stage that does not exist.
	ValCatUnknownStage ValidationCategory = "unknown_stage"
	// ValCatUnknownItem indicates a blocker rule naming a missing item.
	ValCatUnknownItem ValidationCategory = "unknown_item"
	// ValCatDanglingRef indicates an annotation reference that will be dropped.
	ValCatDanglingRef ValidationCategory = "dangling_ref"
	// ValCatCycle indicates annotations that reference each other circularly.
	ValCatCycle ValidationCategory = "cycle"
	// ValCatBoundsViolation indicates a numeric field is out of valid range.
	ValCatBoundsViolation ValidationCategory = "bounds_violation"
)

// ValidationError records a validation problem with source context.
type ValidationError struct {
	Category   ValidationCategory
	ItemID     int
	SourceFile string
	Field      string
	Err        error
}

// Error returns a human-readable string including source file and item context.
func (e *ValidationError) Error() string {
	if e.ItemID != 0 {
		return e.SourceFile + ": item " + strconv.Itoa(e.ItemID) + ": " + e.Err.Error()
	}
	return e.SourceFile + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsWarning reports whether the problem is tolerated at load time. Dangling
// references and cycles only affect guidance quality, never loading.
func (e *ValidationError) IsWarning() bool {
	return e.Category == ValCatDanglingRef || e.Category == ValCatCycle
}
