package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codemap/internal/core/config"
	"codemap/internal/core/watcher"
	"codemap/internal/engine/parser"
	"codemap/internal/index"
	"codemap/internal/shared/observability"
	"codemap/internal/shared/util"
)

// App wires the plugin registry, index reloader, file watcher and optional
// observability/store sidecars for one indexing session.
type App struct {
	cfg      *config.Config
	reg      *parser.Registry
	reloader *index.Reloader
	watcher  *watcher.Watcher
	guard    *util.Limiter
	obs      *observability.Server
	store    *index.DefStore

	lastErr string
}

func NewApp(cfg *config.Config) (*App, error) {
	reg, err := parser.NewRegistry()
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, reg: reg}, nil
}

func (a *App) indexOptions() index.Options {
	return index.Options{
		Root:         a.cfg.Root,
		IncludeDeps:  a.cfg.Dependencies.Include,
		ExcludeDirs:  a.cfg.Exclude.Dirs,
		ExcludeFiles: a.cfg.Exclude.Files,
		DepFileCap:   a.cfg.Dependencies.FileCap,
		CargoHome:    a.cfg.Dependencies.CargoHome,
	}
}

// InitialLoad builds the first index generation synchronously.
func (a *App) InitialLoad(ctx context.Context) error {
	ix, err := index.Load(ctx, a.reg, a.indexOptions())
	if err != nil {
		return err
	}
	a.reloader = index.NewReloader(ix, a.reg, a.indexOptions(), a.cfg.Watch.ReloadCooldown)

	if a.cfg.Store.Enabled {
		store, err := index.OpenStore(a.cfg.Store.Path, a.cfg.Store.Project)
		if err != nil {
			// The mirror is a convenience; indexing continues without it.
			slog.Warn("definition store unavailable", "path", a.cfg.Store.Path, "error", err)
		} else {
			a.store = store
			a.mirror(ix)
		}
	}
	return nil
}

func (a *App) Index() *index.Index {
	return a.reloader.Current()
}

func (a *App) mirror(ix *index.Index) {
	if a.store == nil {
		return
	}
	if err := a.store.ReplaceAll(ix); err != nil {
		slog.Warn("failed to mirror definitions", "error", err)
	}
}

// StartWatcher begins watch mode: file-system changes request background
// reloads, a poll loop swaps finished generations in, and the optional HTTP
// endpoint reports health.
func (a *App) StartWatcher(ctx context.Context) error {
	// Storm guard on top of the reloader's own cooldown, so a burst of
	// debounced batches collapses to one request.
	a.guard = util.NewCooldown(a.cfg.Watch.ReloadCooldown)

	w, err := watcher.New(a.cfg.Watch.Debounce, a.cfg.Exclude.Dirs, a.cfg.Exclude.Files, func(paths []string) {
		if !a.guard.Allow() {
			return
		}
		slog.Debug("change batch", "files", len(paths))
		a.reloader.Request(ctx)
	})
	if err != nil {
		return err
	}
	w.SetExtensionFilter(a.reg.SupportedExtensions())
	if err := w.Watch(a.cfg.Root); err != nil {
		return err
	}
	a.watcher = w

	if a.cfg.Observability.Addr != "" {
		a.obs = observability.NewServer(a.cfg.Observability.Addr, a.health)
		a.obs.Start()
	}

	go a.pollLoop(ctx)
	return nil
}

func (a *App) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev := a.reloader.Current()
			if a.reloader.Poll() {
				cur := a.reloader.Current()
				if cur != prev {
					a.lastErr = ""
					a.mirror(cur)
				} else {
					a.lastErr = "last reload failed"
				}
			}
		}
	}
}

func (a *App) health() observability.Health {
	ix := a.reloader.Current()
	return observability.Health{
		Status:     "up",
		Generation: ix.Generation,
		Files:      len(ix.Files),
		LastError:  a.lastErr,
	}
}

func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.obs != nil {
		_ = a.obs.Stop(ctx)
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// Summary renders the one-shot scan report.
func (a *App) Summary() string {
	ix := a.reloader.Current()
	defCount := 0
	for _, locs := range ix.Defs {
		defCount += len(locs)
	}
	return fmt.Sprintf("indexed %d files, %d definitions (%d distinct names)\n",
		len(ix.Parsed), defCount, len(ix.Defs))
}
