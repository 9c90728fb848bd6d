package resolver

import (
	"sync"
	"testing"
	"time"

	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
	"baseline/internal/engine/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	asOf    = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	wide    = &catalog.Declaration{Baseline: "high", LowDate: "2017-03-01", HighDate: "2019-09-01"}
	limited = &catalog.Declaration{Baseline: "low", LowDate: "2024-03-14"}
	none    = &catalog.Declaration{}
)

func testCatalog() *catalog.Catalog {
	return catalog.New(asOf, []catalog.FeatureSpec{
		{ID: "grid", Name: "Grid", CompatKeys: []string{"css.properties.display.grid", "css.properties.grid-template-columns"}, Status: wide},
		{ID: "dialog-closedby", Name: "Dialog closedby", CompatKeys: []string{"html.elements.dialog.closedby"}, Status: none},
		{ID: "dialog", Name: "<dialog>", CompatKeys: []string{"html.elements.dialog"}, Status: limited},
		{ID: "webgpu", Name: "WebGPU", CompatKeys: []string{"api.GPU", "api.Navigator.gpu"}, Status: none},
		{ID: "color-basic", Name: "Color", CompatKeys: []string{"css.properties.color"}, Status: wide},
		{ID: "anchor-positioning", Name: "Anchor positioning", CompatKeys: []string{"css.properties.anchor-name"}},
		{ID: "temporal", Name: "Temporal", CompatKeys: []string{"api.Temporal"}},
		{ID: "resize-observer", Name: "Resize observer", CompatKeys: []string{"api.ResizeObserver"}, Status: wide},
		{ID: "intersection-observer", Name: "Intersection observer", CompatKeys: []string{"api.IntersectionObserver"}, Status: wide},
		{ID: "css", Name: "CSS"},
	}, map[string]catalog.Declaration{
		"css.properties.color":        *wide,
		"css.properties.display.grid": *wide,
		"css.properties.font-size":    *wide,
		"html.elements.dialog":        *limited,
		"html.elements.div":           *wide,
	})
}

func wideStatus() catalog.SupportStatus {
	return catalog.SupportStatus{Tier: catalog.TierWide, LimitedSince: "2017-03-01", WideSince: "2019-09-01"}
}

func TestResolve_StyleTiers(t *testing.T) {
	r := New(testCatalog())

	tests := []struct {
		name    string
		mention parser.Mention
		want    report.Record
	}{
		{
			name:    "direct compound key",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "display", Value: "grid", Line: 2},
			want: report.Record{
				Key: "css.properties.display.grid", Kind: parser.KindStyle, FeatureID: "grid", Name: "Grid",
				Status: wideStatus(), Line: 2, Via: report.ViaDirect,
			},
		},
		{
			name:    "parent key fallback",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "color", Value: "red", Line: 3},
			want: report.Record{
				Key: "css.properties.color", Kind: parser.KindStyle, FeatureID: "color-basic", Name: "Color",
				Status: wideStatus(), Line: 3, Via: report.ViaParent,
			},
		},
		{
			name:    "reverse lookup rewrites to the feature's first key",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "grid-template-columns", Line: 4},
			want: report.Record{
				Key: "css.properties.display.grid", Kind: parser.KindStyle, FeatureID: "grid", Name: "Grid",
				Status: wideStatus(), Line: 4, Via: report.ViaReverse,
			},
		},
		{
			name:    "display name from the first key segment",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "font-size", Value: "12px", Line: 5},
			want: report.Record{
				Key: "css.properties.font-size", Kind: parser.KindStyle, FeatureID: "css", Name: "CSS",
				Status: wideStatus(), Line: 5, Via: report.ViaParent,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.mention)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ReverseSkipsFeaturesWithoutStatus(t *testing.T) {
	r := New(catalog.New(asOf, []catalog.FeatureSpec{
		{ID: "container-queries-draft", Name: "Draft", CompatKeys: []string{"css.properties.container-type"}},
		{ID: "container-queries", Name: "Container queries", CompatKeys: []string{"css.properties.container", "css.properties.container-type"}, Status: limited},
		{ID: "field-sizing", CompatKeys: []string{"css.properties.field-sizing"}},
	}, nil))

	got, ok := r.Resolve(parser.Mention{Kind: parser.KindStyle, Name: "container-type", Line: 7})
	require.True(t, ok)
	assert.Equal(t, report.Record{
		Key: "css.properties.container", Kind: parser.KindStyle, FeatureID: "container-queries", Name: "Container queries",
		Status: catalog.SupportStatus{Tier: catalog.TierLimited, LimitedSince: "2024-03-14"}, Line: 7, Via: report.ViaReverse,
	}, got)

	_, ok = r.Resolve(parser.Mention{Kind: parser.KindStyle, Name: "field-sizing", Line: 8})
	assert.False(t, ok)
}

func TestResolve_Markup(t *testing.T) {
	r := New(testCatalog())

	got, ok := r.Resolve(parser.Mention{Kind: parser.KindMarkup, Name: "dialog", Line: 7})
	require.True(t, ok)
	assert.Equal(t, "<dialog>", got.Name)
	assert.Equal(t, "dialog", got.FeatureID)
	assert.Equal(t, catalog.SupportStatus{Tier: catalog.TierLimited, LimitedSince: "2024-03-14"}, got.Status)

	// No feature claims the key: the name falls back to the key itself.
	got, ok = r.Resolve(parser.Mention{Kind: parser.KindMarkup, Name: "div", Line: 8})
	require.True(t, ok)
	assert.Equal(t, "html.elements.div", got.Name)
	assert.Empty(t, got.FeatureID)
}

func TestResolve_Unresolved(t *testing.T) {
	r := New(testCatalog())

	for _, m := range []parser.Mention{
		{Kind: parser.KindMarkup, Name: "blink"},
		{Kind: parser.KindStyle, Name: "zoom", Value: "2"},
		// Listed by a feature without status.
		{Kind: parser.KindStyle, Name: "anchor-name"},
		{Kind: parser.KindScript, Name: "foo.bar"},
		{Kind: parser.KindScript, Name: ""},
	} {
		_, ok := r.Resolve(m)
		assert.False(t, ok, "%+v", m)
	}
}

func TestResolve_Script(t *testing.T) {
	r := New(testCatalog())

	tests := []struct {
		candidate string
		featureID string
		tier      catalog.Tier
	}{
		{candidate: "navigator.gpu", featureID: "webgpu", tier: catalog.TierNone},
		{candidate: "WebGPU", featureID: "webgpu", tier: catalog.TierNone},
		{candidate: "api.Temporal", featureID: "temporal", tier: catalog.TierNone},
		// Exact id match beats the earlier substring match on dialog-closedby.
		{candidate: "dialog", featureID: "dialog", tier: catalog.TierLimited},
		// Two substring matches: catalog order decides.
		{candidate: "Observer", featureID: "resize-observer", tier: catalog.TierWide},
		{candidate: "IntersectionObserver", featureID: "intersection-observer", tier: catalog.TierWide},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, ok := r.Resolve(parser.Mention{Kind: parser.KindScript, Name: tt.candidate, Line: 9})
			require.True(t, ok)
			assert.Equal(t, tt.candidate, got.Key)
			assert.Equal(t, tt.featureID, got.FeatureID)
			assert.Equal(t, tt.tier, got.Status.Tier)
			assert.Equal(t, report.ViaSearch, got.Via)
			assert.Equal(t, 9, got.Line)
		})
	}
}

func TestResolveAll(t *testing.T) {
	r := New(testCatalog())
	got := r.ResolveAll([]parser.Mention{
		{Kind: parser.KindMarkup, Name: "blink", Line: 1},
		{Kind: parser.KindMarkup, Name: "dialog", Line: 2},
		{Kind: parser.KindScript, Name: "navigator.gpu", Line: 3},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "html.elements.dialog", got[0].Key)
	assert.Equal(t, "navigator.gpu", got[1].Key)
}

func TestResolve_ConcurrentSearches(t *testing.T) {
	r := New(testCatalog())
	mentions := []parser.Mention{
		{Kind: parser.KindScript, Name: "navigator.gpu"},
		{Kind: parser.KindScript, Name: "Observer"},
		{Kind: parser.KindScript, Name: "unknown.thing"},
		{Kind: parser.KindStyle, Name: "color", Value: "red"},
	}
	want := r.ResolveAll(mentions)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := New(testCatalog()).ResolveAll(mentions)
			assert.Equal(t, want, got)
			assert.Equal(t, want, r.ResolveAll(mentions))
		}()
	}
	wg.Wait()
}

// panickyCatalog fails every direct status lookup.
type panickyCatalog struct {
	*catalog.Catalog
}

func (panickyCatalog) StatusOf(string) (catalog.SupportStatus, bool) {
	panic("unindexable key")
}

func TestResolve_FailingLookupIsNotFound(t *testing.T) {
	r := New(panickyCatalog{testCatalog()})

	got, ok := r.Resolve(parser.Mention{Kind: parser.KindMarkup, Name: "dialog"})
	require.True(t, ok)
	assert.Equal(t, report.ViaReverse, got.Via)
	assert.Equal(t, "html.elements.dialog", got.Key)

	_, ok = r.Resolve(parser.Mention{Kind: parser.KindMarkup, Name: "div"})
	assert.False(t, ok)
}
