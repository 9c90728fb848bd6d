package report

import (
	"encoding/json"
	"testing"

	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(key string, kind parser.Kind, tier catalog.Tier, line int) Record {
	return Record{Key: key, Kind: kind, Name: key, Status: catalog.SupportStatus{Tier: tier}, Line: line, Via: ViaDirect}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name                 string
		wide, limited, total int
		want                 int
	}{
		{name: "two wide one limited one none", wide: 2, limited: 1, total: 4, want: 63},
		{name: "empty is fully compliant", total: 0, want: 100},
		{name: "all wide", wide: 3, total: 3, want: 100},
		{name: "all none", total: 5, want: 0},
		{name: "only limited", limited: 1, total: 1, want: 50},
		{name: "rounds down", wide: 1, total: 3, want: 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.wide, tt.limited, tt.total))
		})
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	records := []Record{
		record("css.properties.color", parser.KindStyle, catalog.TierWide, 2),
		record("html.elements.dialog", parser.KindMarkup, catalog.TierLimited, 3),
		record("css.properties.color", parser.KindStyle, catalog.TierWide, 9),
		record("css.properties.color", parser.KindScript, catalog.TierNone, 10),
	}

	got := Dedupe(records)
	require.Len(t, got, 3)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, "html.elements.dialog", got[1].Key)
	assert.Equal(t, parser.KindScript, got[2].Kind)

	seen := make(map[[2]string]bool)
	for _, r := range got {
		id := [2]string{r.Key, string(r.Kind)}
		assert.False(t, seen[id], "duplicate %v", id)
		seen[id] = true
	}
}

func TestNewFileReport(t *testing.T) {
	fr := NewFileReport("a.css", []Record{
		record("a", parser.KindStyle, catalog.TierWide, 1),
		record("b", parser.KindStyle, catalog.TierWide, 2),
		record("c", parser.KindStyle, catalog.TierLimited, 3),
		record("d", parser.KindStyle, catalog.TierNone, 4),
		record("a", parser.KindStyle, catalog.TierWide, 5),
	})
	require.NotNil(t, fr)
	assert.Equal(t, "a.css", fr.Path)
	assert.Len(t, fr.Records, 4)
	assert.Equal(t, Summary{Wide: 2, Limited: 1, None: 1, Total: 4, Score: 63}, fr.Summary)

	assert.Nil(t, NewFileReport("empty.css", nil))
}

func TestNewScanReport(t *testing.T) {
	a := NewFileReport("b/a.html", []Record{record("x", parser.KindMarkup, catalog.TierWide, 1)})
	b := NewFileReport("a/b.css", []Record{record("y", parser.KindStyle, catalog.TierNone, 1)})

	r := NewScanReport([]*FileReport{a, nil, b, {Path: "empty.js"}}, ScanStats{Discovered: 4, Empty: 1})
	assert.Equal(t, []string{"a/b.css", "b/a.html"}, r.Paths())
	assert.Nil(t, r.Get("empty.js"))
	assert.Same(t, a, r.Get("b/a.html"))
	assert.Equal(t, Summary{Wide: 1, None: 1, Total: 2, Score: 50}, r.Summary)
	assert.Equal(t, ScanStats{Discovered: 4, Reported: 2, Empty: 1}, r.Stats)

	// Encoding is independent of the order files were added in.
	reversed := NewScanReport([]*FileReport{b, a}, ScanStats{Discovered: 4, Empty: 1})
	first, err := json.Marshal(r)
	require.NoError(t, err)
	second, err := json.Marshal(reversed)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, first, second)
}

func TestEmptyScanReport(t *testing.T) {
	r := NewScanReport(nil, ScanStats{})
	assert.Empty(t, r.Paths())
	assert.Equal(t, 100, r.Summary.Score)

	var nilReport *ScanReport
	assert.Nil(t, nilReport.Paths())
}
