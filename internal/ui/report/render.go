package report

import (
	"fmt"
	"io"

	"baseline/internal/engine/report"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Renderer interface {
	Render(w io.Writer, r *report.ScanReport) error
}

// NewRenderer returns the renderer for format. color only affects text output.
func NewRenderer(format string, color bool) (Renderer, error) {
	switch format {
	case FormatText, "":
		return TextRenderer{Color: color}, nil
	case FormatJSON:
		return JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
