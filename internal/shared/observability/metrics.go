package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codemap_parse_seconds",
		Help:    "Time spent parsing and extracting one source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"plugin"})

	FilesIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codemap_files_indexed",
		Help: "Number of files in the current index generation.",
	})

	FilesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemap_files_skipped_total",
		Help: "Files skipped during indexing, by reason.",
	}, []string{"reason"})

	DefinitionsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codemap_definitions_indexed",
		Help: "Number of definition locations in the current index generation.",
	})

	DependencyFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codemap_dependency_files",
		Help: "External dependency source files merged into the current index.",
	})

	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codemap_reloads_total",
		Help: "Completed index reloads, by outcome.",
	}, []string{"outcome"})

	ReloadsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codemap_reloads_dropped_total",
		Help: "Reload requests dropped because one was in flight or inside the cooldown window.",
	})

	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "codemap_load_seconds",
		Help:    "Wall time of a full project index load.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codemap_watcher_events_total",
		Help: "File system events received by the watcher.",
	})
)
