package index

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"codemap/internal/engine/parser"
	"codemap/internal/shared/observability"
)

// Reloader rebuilds the index in the background while readers keep the
// previous snapshot. At most one rebuild runs at a time; requests arriving
// while one is in flight or within the cooldown window are dropped.
type Reloader struct {
	reg  *parser.Registry
	opts Options

	current atomic.Pointer[Index]

	mu       sync.Mutex
	inflight bool
	lastDone time.Time
	cooldown time.Duration

	results chan reloadResult
}

type reloadResult struct {
	ix  *Index
	err error
}

// NewReloader wraps an initial snapshot. cooldown <= 0 disables throttling.
func NewReloader(initial *Index, reg *parser.Registry, opts Options, cooldown time.Duration) *Reloader {
	r := &Reloader{
		reg:      reg,
		opts:     opts,
		cooldown: cooldown,
		results:  make(chan reloadResult, 1),
	}
	r.current.Store(initial)
	return r
}

// Current returns the active snapshot. Safe for concurrent use.
func (r *Reloader) Current() *Index {
	return r.current.Load()
}

// Request asks for a background rebuild. The request is dropped when a
// rebuild is already running or the previous one completed too recently;
// it reports whether a rebuild was started.
func (r *Reloader) Request(ctx context.Context) bool {
	r.mu.Lock()
	if r.inflight {
		r.mu.Unlock()
		observability.ReloadsDroppedTotal.Inc()
		return false
	}
	if r.cooldown > 0 && !r.lastDone.IsZero() && time.Since(r.lastDone) < r.cooldown {
		r.mu.Unlock()
		observability.ReloadsDroppedTotal.Inc()
		slog.Debug("reload suppressed by cooldown")
		return false
	}
	r.inflight = true
	r.mu.Unlock()

	go func() {
		ix, err := Load(ctx, r.reg, r.opts)
		r.results <- reloadResult{ix: ix, err: err}
	}()
	return true
}

// Poll applies a finished rebuild, if any. On success the snapshot is
// swapped atomically; on failure the previous snapshot stays active.
// It reports whether a rebuild completed since the last call.
func (r *Reloader) Poll() bool {
	select {
	case res := <-r.results:
		r.mu.Lock()
		r.inflight = false
		r.lastDone = time.Now()
		r.mu.Unlock()

		if res.err != nil {
			observability.ReloadsTotal.WithLabelValues("error").Inc()
			slog.Error("background reload failed; keeping previous index", "error", res.err)
			return true
		}
		r.current.Store(res.ix)
		observability.ReloadsTotal.WithLabelValues("ok").Inc()
		slog.Info("index reloaded", "generation", res.ix.Generation, "files", len(res.ix.Files))
		return true
	default:
		return false
	}
}
