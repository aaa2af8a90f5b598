package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	registry   *registry.Registry
	store      *config.Store
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App
// with its own logger and registry. store receives the job files' settings;
// nil uses a clone of the process Store. Without modules, CoreModules are
// registered.
func NewApp(outW io.Writer, cfg *Config, store *config.Store, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if store == nil {
		store = config.Process().Clone()
	}
	if len(modules) == 0 {
		modules = CoreModules()
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "variants", len(reg.VariantNames()))

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		registry: reg,
		store:    store,
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Store returns the config Store tasks read from.
func (a *App) Store() *config.Store {
	return a.store
}
