package app

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"baseline/internal/core/errors"
	"baseline/internal/core/ports"
	"baseline/internal/engine/parser"
	"baseline/internal/engine/report"
	"baseline/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Scanner runs discovery, extraction, resolution and aggregation. Files are
// processed independently; a failing file is skipped and never aborts the scan.
type Scanner struct {
	source   ports.SourceProvider
	parser   ports.MentionParser
	resolver ports.FeatureResolver
	include  []string
	workers  int
}

var _ ports.ScanService = (*Scanner)(nil)

// NewScanner wires a scanner. include is used when a request names no
// patterns; workers <= 0 means one per CPU.
func NewScanner(source ports.SourceProvider, p ports.MentionParser, r ports.FeatureResolver, include []string, workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{
		source:   source,
		parser:   p,
		resolver: r,
		include:  append([]string(nil), include...),
		workers:  workers,
	}
}

type fileOutcome int

const (
	outcomeSkipped fileOutcome = iota
	outcomeEmpty
	outcomeReported
)

// Scan produces a report for every discovered file with at least one
// resolved record. The result does not depend on completion order.
func (s *Scanner) Scan(ctx context.Context, req ports.ScanRequest) (*report.ScanReport, error) {
	scanID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "Scanner.Scan", trace.WithAttributes(attribute.String("scan_id", scanID)))
	defer span.End()

	start := time.Now()
	patterns := req.Patterns
	if len(patterns) == 0 {
		patterns = s.include
	}

	files, err := s.source.Discover(ctx, patterns)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return nil, errors.AddContext(err, errors.CtxOperation, "discover")
	}
	slog.Debug("scan started", "scan_id", scanID, "files", len(files), "workers", s.workers)

	results := make([]*report.FileReport, len(files))
	var skipped, empty atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fr, outcome := s.scanFile(gctx, file)
			observability.FilesTotal.WithLabelValues(outcomeLabel(outcome)).Inc()
			switch outcome {
			case outcomeSkipped:
				skipped.Add(1)
			case outcomeEmpty:
				empty.Add(1)
			}
			results[i] = fr
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := report.NewScanReport(results, report.ScanStats{
		Discovered: len(files),
		Empty:      int(empty.Load()),
		Skipped:    int(skipped.Load()),
	})

	elapsed := time.Since(start)
	observability.ScanDuration.Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("files.discovered", out.Stats.Discovered),
		attribute.Int("files.reported", out.Stats.Reported),
		attribute.Int("score", out.Summary.Score),
	)
	slog.Info("scan complete",
		"scan_id", scanID,
		"discovered", out.Stats.Discovered,
		"reported", out.Stats.Reported,
		"skipped", out.Stats.Skipped,
		"score", out.Summary.Score,
		"duration", elapsed,
	)
	return out, nil
}

func (s *Scanner) scanFile(ctx context.Context, file ports.SourceFile) (fr *report.FileReport, outcome fileOutcome) {
	ctx, span := observability.Tracer.Start(ctx, "Scanner.scanFile", trace.WithAttributes(
		attribute.String("path", file.Path),
		attribute.String("language", file.Language),
	))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("recovered from panic while scanning file", "path", file.Path, "panic", r)
			span.SetStatus(codes.Error, "panic")
			fr, outcome = nil, outcomeSkipped
		}
	}()

	source, err := s.source.Read(ctx, file)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("failed to read file", "path", file.Path, "error", err)
			span.RecordError(err)
		}
		return nil, outcomeSkipped
	}

	start := time.Now()
	mentions, err := s.parser.ParseUnit(ctx, parser.Unit{Path: file.Path, Language: file.Language, Source: source})
	observability.ParsingDuration.WithLabelValues(file.Language).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("failed to process file", "path", file.Path, "error", err)
			span.RecordError(err)
		}
		return nil, outcomeSkipped
	}

	records := make([]report.Record, 0, len(mentions))
	for _, m := range mentions {
		observability.MentionsTotal.WithLabelValues(string(m.Kind)).Inc()
		rec, ok := s.resolver.Resolve(m)
		if !ok {
			observability.UnresolvedTotal.WithLabelValues(string(m.Kind)).Inc()
			continue
		}
		observability.ResolutionsTotal.WithLabelValues(string(rec.Via)).Inc()
		records = append(records, rec)
	}

	fr = report.NewFileReport(file.Path, records)
	span.SetAttributes(attribute.Int("mentions", len(mentions)), attribute.Int("records", len(records)))
	if fr == nil {
		return nil, outcomeEmpty
	}
	return fr, outcomeReported
}

func outcomeLabel(o fileOutcome) string {
	switch o {
	case outcomeReported:
		return observability.OutcomeReported
	case outcomeEmpty:
		return observability.OutcomeEmpty
	default:
		return observability.OutcomeSkipped
	}
}
