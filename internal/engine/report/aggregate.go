package report

import (
	"encoding/json"
	"math"

	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
)

type dedupKey struct {
	Key  string      `json:"key"`
	Kind parser.Kind `json:"kind"`
}

// identity is the stable serialization records are deduplicated on. Line is
// informational and not part of it.
func identity(r Record) string {
	data, _ := json.Marshal(dedupKey{Key: r.Key, Kind: r.Kind})
	return string(data)
}

// Dedupe collapses records sharing (Key, Kind). The first occurrence, and its
// line, wins; order is preserved.
func Dedupe(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		id := identity(r)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}
	return out
}

// NewFileReport deduplicates records and summarizes them. It returns nil when
// nothing is left, so empty files never appear in a scan report.
func NewFileReport(path string, records []Record) *FileReport {
	deduped := Dedupe(records)
	if len(deduped) == 0 {
		return nil
	}
	return &FileReport{Path: path, Records: deduped, Summary: Summarize(deduped)}
}

func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status.Tier {
		case catalog.TierWide:
			s.Wide++
		case catalog.TierLimited:
			s.Limited++
		default:
			s.None++
		}
	}
	s.Total = len(records)
	s.Score = Score(s.Wide, s.Limited, s.Total)
	return s
}

// Score is round(100 * (wide + limited/2) / total), and 100 for no records.
func Score(wide, limited, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * (float64(wide) + 0.5*float64(limited)) / float64(total)))
}
