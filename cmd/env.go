package cmd

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/papapumpkin/compass/internal/config"
	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/guidance"
	"github.com/papapumpkin/compass/internal/store"
	"github.com/papapumpkin/compass/internal/telemetry"
)

// env bundles what most subcommands need: configuration, the store, the
// current curriculum and the telemetry emitter.
type env struct {
	cfg     config.Config
	store   *store.SQLiteStore
	engine  *guidance.Engine
	emitter *telemetry.Emitter
}

// openEnv loads configuration and opens every dependency. Callers must
// call close when done.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	engine, err := loadEngine(cfg, cfg.CurriculumDir)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, store: st, engine: engine}
	if cfg.TelemetryPath != "" {
		em, err := telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			st.Close()
			return nil, err
		}
		e.emitter = em
	}
	logger.Debug("environment ready",
		zap.String("db", cfg.DBPath),
		zap.String("curriculum", cfg.CurriculumDir),
		zap.String("curriculum_version", engine.Curriculum().Version()))
	return e, nil
}

func (e *env) close() {
	if err := e.emitter.Close(); err != nil {
		logger.Warn("closing telemetry", zap.Error(err))
	}
	if err := e.store.Close(); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}

// emit records a telemetry event, logging rather than failing on error.
func (e *env) emit(evt telemetry.Event) {
	if err := e.emitter.Emit(evt); err != nil {
		logger.Warn("telemetry emit failed", zap.String("kind", evt.Kind), zap.Error(err))
	}
}

// loadCurriculum reads dir, applying the configured default estimate.
func loadCurriculum(cfg config.Config, dir string) (*curriculum.Curriculum, error) {
	def, err := curriculum.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading curriculum %s: %w", dir, err)
	}
	if cfg.DefaultEstimate != "" {
		def.Manifest.Curriculum.DefaultEstimate = cfg.DefaultEstimate
	}
	c, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("building curriculum %s: %w", dir, err)
	}
	return c, nil
}

func loadEngine(cfg config.Config, dir string) (*guidance.Engine, error) {
	c, err := loadCurriculum(cfg, dir)
	if err != nil {
		return nil, err
	}
	return guidance.New(c, guidance.WithLogger(logger)), nil
}

// parseItemIDs converts arguments to item IDs known to c.
func parseItemIDs(c *curriculum.Curriculum, args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", a)
		}
		if _, ok := c.Item(id); !ok {
			return nil, fmt.Errorf("item %d: %w", id, curriculum.ErrUnknownItem)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
