package report

import (
	"encoding/json"
	"io"

	"baseline/internal/engine/report"
)

// JSONRenderer writes the scan report as indented JSON. Files are keyed by
// path, so the output is stable across runs.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, r *report.ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
