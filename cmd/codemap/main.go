// # cmd/codemap/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codemap/internal/core/config"
	"codemap/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./codemap.toml", "Path to config file")
	root       = flag.String("root", "", "Project root to index (overrides config)")
	deps       = flag.Bool("deps", false, "Include external dependency sources from the lockfile")
	once       = flag.Bool("once", false, "Run single scan and exit")
	watch      = flag.Bool("watch", false, "Keep running and reindex on file changes")
	show       = flag.String("show", "", "Print a colorized listing of one indexed file and exit")
	lookup     = flag.String("lookup", "", "Print all definition locations for a name and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("codemap v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *root != "" {
		cfg.Root = *root
	} else if flag.NArg() > 0 {
		cfg.Root = flag.Arg(0)
	}
	if *deps {
		cfg.Dependencies.Include = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if err := app.InitialLoad(ctx); err != nil {
		slog.Error("initial index load failed", "error", err)
		os.Exit(1)
	}

	if *show != "" {
		out, err := ShowFile(app.Index(), *show)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Print(out)
		os.Exit(0)
	}
	if *lookup != "" {
		fmt.Print(LookupName(app.Index(), *lookup))
		os.Exit(0)
	}

	fmt.Print(app.Summary())

	if *once || !*watch {
		app.Shutdown(ctx)
		os.Exit(0)
	}

	if err := app.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	app.Shutdown(shutdownCtx)
}
