package report

import (
	"fmt"
	"io"
	"strings"

	"baseline/internal/engine/catalog"
	"baseline/internal/engine/report"

	"github.com/charmbracelet/lipgloss"
)

var (
	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	wideStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	limitedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	noneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// TextRenderer writes a human-readable report, one block per file in path order.
type TextRenderer struct {
	// Color enables ANSI styling.
	Color bool
}

func (t TextRenderer) Render(w io.Writer, r *report.ScanReport) error {
	var buf strings.Builder

	paths := r.Paths()
	if len(paths) == 0 {
		buf.WriteString(t.style(mutedStyle, "no web platform features found"))
		buf.WriteString("\n")
	}

	for _, path := range paths {
		fr := r.Files[path]
		fmt.Fprintf(&buf, "%s  %s\n", t.style(pathStyle, path), t.summaryLine(fr.Summary))
		for _, rec := range fr.Records {
			fmt.Fprintf(&buf, "  %5s  %s  %s", lineLabel(rec.Line), t.tierBadge(rec.Status.Tier), rec.Name)
			if rec.Name != rec.Key {
				fmt.Fprintf(&buf, " %s", t.style(mutedStyle, "("+rec.Key+")"))
			}
			if since := sinceLabel(rec.Status); since != "" {
				fmt.Fprintf(&buf, " %s", t.style(mutedStyle, since))
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "%d files, %d features  %s\n", len(paths), r.Summary.Total, t.summaryLine(r.Summary))
	if r.Stats.Skipped > 0 {
		buf.WriteString(t.style(mutedStyle, fmt.Sprintf("%d files skipped", r.Stats.Skipped)))
		buf.WriteString("\n")
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func (t TextRenderer) summaryLine(s report.Summary) string {
	return fmt.Sprintf("score %d  %s %d  %s %d  %s %d",
		s.Score,
		t.style(wideStyle, "wide"), s.Wide,
		t.style(limitedStyle, "limited"), s.Limited,
		t.style(noneStyle, "none"), s.None,
	)
}

func (t TextRenderer) tierBadge(tier catalog.Tier) string {
	label := fmt.Sprintf("%-7s", string(tier))
	switch tier {
	case catalog.TierWide:
		return t.style(wideStyle, label)
	case catalog.TierLimited:
		return t.style(limitedStyle, label)
	default:
		return t.style(noneStyle, label)
	}
}

func (t TextRenderer) style(s lipgloss.Style, text string) string {
	if !t.Color {
		return text
	}
	return s.Render(text)
}

func lineLabel(line int) string {
	if line <= 0 {
		return "-"
	}
	return fmt.Sprintf("L%d", line)
}

func sinceLabel(s catalog.SupportStatus) string {
	switch {
	case s.Tier == catalog.TierWide && s.WideSince != "":
		return "since " + s.WideSince
	case s.Tier == catalog.TierLimited && s.LimitedSince != "":
		return "since " + s.LimitedSince
	}
	return ""
}
