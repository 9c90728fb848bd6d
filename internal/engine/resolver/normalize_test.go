package resolver

import (
	"testing"

	"baseline/internal/engine/parser"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		mention parser.Mention
		want    Key
		ok      bool
	}{
		{
			name:    "style with value",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "color", Value: "red"},
			want:    Key{Kind: parser.KindStyle, Value: "css.properties.color.red", Parent: "css.properties.color", Raw: "color"},
			ok:      true,
		},
		{
			name:    "style value containing dots",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "line-height", Value: "1.5em"},
			want:    Key{Kind: parser.KindStyle, Value: "css.properties.line-height.1.5em", Parent: "css.properties.line-height", Raw: "line-height"},
			ok:      true,
		},
		{
			name:    "style function value kept whole",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "color", Value: "oklch(70% 0.1 200)"},
			want:    Key{Kind: parser.KindStyle, Value: "css.properties.color.oklch(70% 0.1 200)", Parent: "css.properties.color", Raw: "color"},
			ok:      true,
		},
		{
			name:    "style without value",
			mention: parser.Mention{Kind: parser.KindStyle, Name: "gap"},
			want:    Key{Kind: parser.KindStyle, Value: "css.properties.gap", Raw: "gap"},
			ok:      true,
		},
		{
			name:    "markup",
			mention: parser.Mention{Kind: parser.KindMarkup, Name: "dialog"},
			want:    Key{Kind: parser.KindMarkup, Value: "html.elements.dialog", Raw: "dialog"},
			ok:      true,
		},
		{
			name:    "script strips api prefix and lower-cases",
			mention: parser.Mention{Kind: parser.KindScript, Name: "api.Navigator.gpu"},
			want:    Key{Kind: parser.KindScript, Value: "navigator.gpu", Raw: "api.Navigator.gpu"},
			ok:      true,
		},
		{
			name:    "script without prefix",
			mention: parser.Mention{Kind: parser.KindScript, Name: "WebGPU"},
			want:    Key{Kind: parser.KindScript, Value: "webgpu", Raw: "WebGPU"},
			ok:      true,
		},
		{name: "empty name", mention: parser.Mention{Kind: parser.KindMarkup}},
		{name: "bare api prefix", mention: parser.Mention{Kind: parser.KindScript, Name: "api."}},
		{name: "unknown kind", mention: parser.Mention{Kind: "binary", Name: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.mention)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	m := parser.Mention{Kind: parser.KindStyle, Name: "display", Value: "grid", Line: 4}
	first, _ := Normalize(m)
	m.Line = 40
	second, _ := Normalize(m)
	assert.Equal(t, first, second)
}
