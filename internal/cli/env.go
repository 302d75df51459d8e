package cli

import (
	"log/slog"

	"github.com/roach88/chores/internal/config"
	"github.com/roach88/chores/internal/engine"
	"github.com/roach88/chores/internal/store"
)

// env is the state shared by commands that touch the database.
type env struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
}

// openEnv loads the configuration, opens the database and builds the
// engine. The caller must call close.
func openEnv(opts *RootOptions) (*env, error) {
	clk := opts.clock()

	cfg, err := config.Load(opts.Config, clk.Now())
	if err != nil {
		return nil, err
	}
	slog.Debug("configuration loaded", "path", opts.Config, "chores", len(cfg.Chores))

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	slog.Debug("database ready", "path", cfg.Database)

	eng, err := engine.New(st, cfg.Chores,
		engine.WithClock(clk),
		engine.WithStoreTimeout(cfg.StoreTimeout),
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &env{cfg: cfg, store: st, engine: eng}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
