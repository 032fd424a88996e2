package guidance

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/compass/internal/project"
	"github.com/papapumpkin/compass/internal/telemetry"
)

// Source loads the per-project inputs of a diagnosis. Implementations
// return an error wrapping project.ErrNotFound for unknown projects.
type Source interface {
	LoadProject(ctx context.Context, projectID string) (project.Snapshot, error)
}

// Service loads a project, runs the engine over it and records the result.
// The engine may be replaced at any time (e.g. after a curriculum reload);
// a diagnosis in flight keeps the engine it started with.
type Service struct {
	engine  atomic.Pointer[Engine]
	source  Source
	emitter *telemetry.Emitter
	logger  *zap.Logger
	now     func() time.Time
	limit   int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEmitter records a telemetry event per diagnosis.
func WithEmitter(em *telemetry.Emitter) ServiceOption {
	return func(s *Service) { s.emitter = em }
}

// WithServiceLogger sets the service logger.
func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used as "now" for forecasts.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLimit sets the number of recommendations per diagnosis.
func WithLimit(n int) ServiceOption {
	return func(s *Service) { s.limit = n }
}

// NewService creates a Service diagnosing projects from source with engine.
func NewService(engine *Engine, source Source, opts ...ServiceOption) *Service {
	s := &Service{
		source: source,
		logger: zap.NewNop(),
		now:    time.Now,
		limit:  DefaultLimit,
	}
	s.engine.Store(engine)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the engine currently in use.
func (s *Service) Engine() *Engine {
	return s.engine.Load()
}

// SetEngine swaps in a new engine, typically built from a reloaded
// curriculum.
func (s *Service) SetEngine(e *Engine) {
	old := s.engine.Swap(e)
	s.logger.Info("curriculum engine replaced",
		zap.String("from", old.Curriculum().Version()),
		zap.String("to", e.Curriculum().Version()))
	_ = s.emitter.Emit(telemetry.Event{
		Kind: telemetry.KindCurriculumReload,
		Data: map[string]string{"from": old.Curriculum().Version(), "to": e.Curriculum().Version()},
	})
}

// Diagnose loads projectID and computes its diagnosis. A project that
// cannot be loaded fails the whole call; no partial result is returned.
func (s *Service) Diagnose(ctx context.Context, projectID string) (*Result, error) {
	snap, err := s.source.LoadProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("diagnose %s: %w", projectID, err)
	}

	engine := s.Engine()
	start := time.Now()
	res := engine.Diagnose(Input{
		ProjectID:   snap.Project.ID,
		Defaults:    snap.Defaults,
		Overrides:   snap.Overrides,
		Completions: snap.Completions,
		Now:         s.now(),
		Limit:       s.limit,
	})

	s.logger.Debug("diagnosis computed",
		zap.String("project", res.ProjectID),
		zap.String("stage", res.CurrentStage),
		zap.Int("progress", res.Progress),
		zap.Int("actions", len(res.Actions)),
		zap.Duration("elapsed", time.Since(start)))

	if err := s.emitter.Emit(telemetry.Event{
		Timestamp: res.GeneratedAt,
		Kind:      telemetry.KindDiagnosis,
		ProjectID: res.ProjectID,
		Data: map[string]any{
			"curriculum_version": res.CurriculumVersion,
			"current_stage":      res.CurrentStage,
			"progress":           res.Progress,
			"actions":            actionIDs(res.Actions),
			"blockers":           len(res.Blockers),
		},
	}); err != nil {
		s.logger.Warn("telemetry emit failed", zap.Error(err))
	}
	return &res, nil
}

func actionIDs(recs []Recommendation) []int {
	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.ItemID
	}
	return ids
}
