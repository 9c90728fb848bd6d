package report

import (
	"sort"

	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
)

// Via names the resolution step that produced a record.
type Via string

const (
	ViaDirect  Via = "direct"
	ViaParent  Via = "parent"
	ViaReverse Via = "reverse"
	ViaSearch  Via = "search"
)

// Record is one resolved feature usage in a file. Key is the catalog key the
// status was taken from, or the raw candidate for script records. Name falls
// back to Key when no catalog feature claims it.
type Record struct {
	Key       string                `json:"key"`
	Kind      parser.Kind           `json:"kind"`
	FeatureID string                `json:"feature_id,omitempty"`
	Name      string                `json:"name"`
	Status    catalog.SupportStatus `json:"status"`
	Line      int                   `json:"line,omitempty"`
	Via       Via                   `json:"via"`
}

// Summary counts records per tier.
type Summary struct {
	Wide    int `json:"wide"`
	Limited int `json:"limited"`
	None    int `json:"none"`
	Total   int `json:"total"`
	Score   int `json:"score"`
}

// FileReport holds the deduplicated records of one file in first-seen order.
type FileReport struct {
	Path    string   `json:"path"`
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

// ScanStats counts what happened to the discovered files.
type ScanStats struct {
	Discovered int `json:"discovered"`
	Reported   int `json:"reported"`
	Empty      int `json:"empty"`
	Skipped    int `json:"skipped"`
}

// ScanReport maps file paths to their reports. Files without records are
// not present.
type ScanReport struct {
	Files   map[string]*FileReport `json:"files"`
	Summary Summary                `json:"summary"`
	Stats   ScanStats              `json:"stats"`
}

// NewScanReport assembles a scan report; the order of files does not matter.
func NewScanReport(files []*FileReport, stats ScanStats) *ScanReport {
	r := &ScanReport{Files: make(map[string]*FileReport, len(files)), Stats: stats}
	var all []Record
	for _, f := range files {
		if f == nil || len(f.Records) == 0 {
			continue
		}
		r.Files[f.Path] = f
		all = append(all, f.Records...)
	}
	r.Summary = Summarize(all)
	r.Stats.Reported = len(r.Files)
	return r
}

// Paths returns the reported file paths in sorted order.
func (r *ScanReport) Paths() []string {
	if r == nil {
		return nil
	}
	paths := make([]string, 0, len(r.Files))
	for path := range r.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the report for path, or nil.
func (r *ScanReport) Get(path string) *FileReport {
	if r == nil {
		return nil
	}
	return r.Files[path]
}
