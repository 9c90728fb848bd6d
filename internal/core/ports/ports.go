package ports

import (
	"context"

	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
	"baseline/internal/engine/report"
)

// FeatureCatalog is the read-only compatibility catalog consulted during
// resolution. Lookups on keys the catalog does not index report false.
type FeatureCatalog interface {
	StatusOf(key string) (catalog.SupportStatus, bool)
	Features() []*catalog.Feature
	FeatureByID(id string) (*catalog.Feature, bool)
	FeaturesForKey(key string) []*catalog.Feature
}

// MentionParser turns a source unit into raw mentions. A unit that cannot be
// recovered from its syntax errors yields an error and is skipped.
type MentionParser interface {
	ParseUnit(ctx context.Context, unit parser.Unit) ([]parser.Mention, error)
	LanguageFor(path string) string
}

// FeatureResolver maps a mention to a resolved record; false means unresolved.
type FeatureResolver interface {
	Resolve(m parser.Mention) (report.Record, bool)
}

// SourceFile is one discovered input file.
type SourceFile struct {
	Path     string
	Language string
}

// SourceProvider discovers input files and reads their contents.
type SourceProvider interface {
	Discover(ctx context.Context, patterns []string) ([]SourceFile, error)
	Read(ctx context.Context, file SourceFile) ([]byte, error)
}

// ScanRequest defines a scan for driving adapters. Empty Patterns means the
// configured include patterns.
type ScanRequest struct {
	Patterns []string
}

// ScanService exposes scanning to driving adapters.
type ScanService interface {
	Scan(ctx context.Context, req ScanRequest) (*report.ScanReport, error)
}
