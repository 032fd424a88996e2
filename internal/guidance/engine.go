// Package guidance diagnoses where a project stands in the curriculum and
// what it should do next. The Engine is a pure computation over an
// immutable Curriculum and per-project inputs: it performs no I/O and holds
// no mutable state, so one Engine may serve concurrent diagnoses.
package guidance

import (
	"go.uber.org/zap"

	"github.com/papapumpkin/compass/internal/curriculum"
)

// DefaultLimit is the number of recommendations returned when the caller
// does not ask for a specific count.
const DefaultLimit = 5

// Engine computes diagnoses against one curriculum version.
type Engine struct {
	curriculum *curriculum.Curriculum
	rules      []PriorityRule
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output about ignored input.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPriorityRules replaces the default priority rule chain.
func WithPriorityRules(rules []PriorityRule) Option {
	return func(e *Engine) { e.rules = append([]PriorityRule(nil), rules...) }
}

// New creates an Engine for c.
func New(c *curriculum.Curriculum, opts ...Option) *Engine {
	e := &Engine{
		curriculum: c,
		rules:      DefaultPriorityRules(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, d := range c.Graph().Dropped() {
		e.logger.Debug("dropped dangling annotation reference",
			zap.Int("item", d.From),
			zap.Int("target", d.To),
			zap.String("curriculum_version", c.Version()))
	}
	return e
}

// Curriculum returns the curriculum this engine was built for.
func (e *Engine) Curriculum() *curriculum.Curriculum {
	return e.curriculum
}

// CompletionSet is the set of item IDs a project has completed.
type CompletionSet map[int]bool

// Completed builds a CompletionSet from item IDs.
func Completed(ids ...int) CompletionSet {
	s := make(CompletionSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Has reports whether id is complete.
func (s CompletionSet) Has(id int) bool {
	return s[id]
}
