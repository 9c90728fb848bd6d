package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "baseline_parsing_seconds",
		Help:    "Time spent extracting mentions from a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "baseline_scan_seconds",
		Help:    "Wall time of a complete scan.",
		Buckets: prometheus.DefBuckets,
	})

	FilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baseline_files_total",
		Help: "Files processed, by outcome (reported, empty, skipped).",
	}, []string{"outcome"})

	MentionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baseline_mentions_total",
		Help: "Raw mentions produced by the extractors.",
	}, []string{"kind"})

	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baseline_resolutions_total",
		Help: "Mentions resolved against the catalog, by resolution path.",
	}, []string{"via"})

	UnresolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baseline_unresolved_total",
		Help: "Mentions with no matching catalog feature.",
	}, []string{"kind"})

	ParserPoolLeased = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "baseline_parser_pool_leased",
		Help: "Parsers currently leased from a language pool.",
	}, []string{"language"})
)

// File outcomes used as FilesTotal labels.
const (
	OutcomeReported = "reported"
	OutcomeEmpty    = "empty"
	OutcomeSkipped  = "skipped"
)
