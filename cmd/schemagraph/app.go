package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AaronLay10/schemagraph/internal/config"
	"github.com/AaronLay10/schemagraph/internal/content"
	"github.com/AaronLay10/schemagraph/internal/customtype"
	"github.com/AaronLay10/schemagraph/internal/events"
	"github.com/AaronLay10/schemagraph/internal/metrics"
	"github.com/AaronLay10/schemagraph/internal/printer"
	"github.com/AaronLay10/schemagraph/internal/storage/postgres"
)

// app holds what every command shares. Content and custom types are
// swapped whole on reload; settings are read per build by the store.
type app struct {
	opts    *globalOptions
	log     *zap.Logger
	store   config.Store
	pg      *postgres.Client
	metrics *metrics.Collector

	repo  atomic.Pointer[content.MemoryRepository]
	types atomic.Pointer[[]customtype.Definition]
}

func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	log, err := newLogger(opts.logLevel, opts.logFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	events.SetLogger(log)

	a := &app{
		opts:    opts,
		log:     log,
		store:   config.FileStore{Path: opts.settings},
		metrics: metrics.NewCollector("schemagraph"),
	}

	if opts.postgres {
		pg, err := postgres.New(ctx, opts.siteID)
		if err != nil {
			return nil, err
		}
		a.pg = pg
		a.store = pg
		events.SetSink(pg)
	}

	if err := a.reload(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// reload re-reads content and custom types. The previous ones stay in
// use when either fails.
func (a *app) reload(ctx context.Context) error {
	repo, err := content.LoadSite(a.opts.site)
	if err != nil {
		return err
	}

	var types []customtype.Definition
	switch {
	case a.pg != nil:
		types, err = a.pg.LoadCustomTypes(ctx)
	case a.opts.types != "":
		types, err = customtype.LoadDefinitions(a.opts.types)
	}
	if err != nil {
		return err
	}

	a.repo.Store(repo)
	a.types.Store(&types)
	return nil
}

func (a *app) customTypes() []customtype.Definition {
	if t := a.types.Load(); t != nil {
		return *t
	}
	return nil
}

// printer builds a printer over the current content. With Postgres every
// emitted graph is also stored in the graphs table.
func (a *app) printer(opts ...printer.Option) *printer.Printer {
	base := []printer.Option{
		printer.WithMetrics(a.metrics),
		printer.WithTypes(a.customTypes),
	}
	if a.pg != nil {
		base = append(base, printer.WithSink(a.pg))
	}
	return printer.New(a.store, a.repo.Load(), append(base, opts...)...)
}

// watchPaths are the files whose edits trigger a rebuild.
func (a *app) watchPaths() []string {
	paths := []string{a.opts.site}
	if a.pg == nil {
		paths = append(paths, a.opts.settings, a.opts.types)
	}
	return paths
}

func (a *app) close() {
	if a.pg != nil {
		events.SetSink(nil)
		if err := a.pg.Close(); err != nil {
			a.log.Warn("failed to close postgres", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func hostname() string {
	h, _ := os.Hostname()
	return h
}
