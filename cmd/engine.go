package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/multidispatch/internal/cachemanager"
	"github.com/zjrosen/multidispatch/internal/catalog"
	"github.com/zjrosen/multidispatch/internal/config"
	"github.com/zjrosen/multidispatch/internal/dispatch"
	"github.com/zjrosen/multidispatch/internal/log"
	"github.com/zjrosen/multidispatch/internal/tracing"
)

// engine is a dispatcher with its catalog applied and middleware wired from
// config.
type engine struct {
	dispatcher  *dispatch.Dispatcher
	bus         *dispatch.Bus
	tracing     *tracing.Provider
	catalogPath string // empty for the built-in catalog
	library     catalog.Library
}

// newEngine builds the dispatcher described by cfg. Middleware runs outermost
// first: tracing, logging, slow-call warnings, call events, memoisation.
func newEngine(cfg config.Config) (*engine, error) {
	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	provider, err := tracing.NewProvider(tracing.FromAppConfig(cfg.Tracing))
	if err != nil {
		return nil, fmt.Errorf("creating tracing provider: %w", err)
	}

	bus := dispatch.NewBus()
	middlewares := []dispatch.Middleware{
		tracing.NewTracingMiddleware(tracing.TracingMiddlewareConfig{
			Tracer:     provider.Tracer(),
			RecordArgs: cfg.Dispatch.LogArgs,
		}),
		dispatch.NewLoggingMiddleware(dispatch.LoggingMiddlewareConfig{LogArgs: cfg.Dispatch.LogArgs}),
		dispatch.NewSlowCallMiddleware(dispatch.SlowCallMiddlewareConfig{Threshold: cfg.Dispatch.SlowCallThreshold}),
		dispatch.NewEventMiddleware(dispatch.EventMiddlewareConfig{Bus: bus}),
	}
	if cfg.Dispatch.Memo {
		middlewares = append(middlewares, dispatch.NewMemoMiddleware(dispatch.MemoMiddlewareConfig{
			Cache:      cachemanager.NewInMemoryCacheManager[string, any]("memo", cfg.Dispatch.MemoTTL, cachemanager.DefaultCleanupInterval),
			TTL:        cfg.Dispatch.MemoTTL,
			Operations: cat.MemoOperations(),
		}))
	}

	reg := dispatch.NewRegistry(dispatch.WithEventBus(bus))
	d := dispatch.NewDispatcher(reg,
		dispatch.WithMiddleware(middlewares...),
		dispatch.WithMaxDepth(cfg.Dispatch.MaxDepth),
	)

	e := &engine{
		dispatcher:  d,
		bus:         bus,
		tracing:     provider,
		catalogPath: cfg.Catalog.Path,
		library:     catalog.DefaultLibrary(),
	}
	if _, err := cat.Apply(d, e.library); err != nil {
		e.Close()
		return nil, fmt.Errorf("applying catalog: %w", err)
	}
	return e, nil
}

// reload re-reads the catalog file and registers clauses not yet present.
func (e *engine) reload() (catalog.Result, error) {
	if e.catalogPath == "" {
		return catalog.Result{}, nil
	}
	cat, err := loadCatalog(e.catalogPath)
	if err != nil {
		return catalog.Result{}, err
	}
	return cat.Apply(e.dispatcher, e.library, catalog.SkipDuplicates())
}

// Close flushes traces and closes the event bus.
func (e *engine) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.tracing.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatTrace, "tracing shutdown failed", err)
	}
	e.bus.Close()
}

// loadCatalog reads the catalog at path, or the built-in one when path is empty.
func loadCatalog(path string) (*catalog.File, error) {
	if path == "" {
		return catalog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}
	return catalog.Load(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}
