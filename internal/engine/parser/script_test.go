package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Candidate
	}{
		{
			name: "dotted chain before capitalized name on the same line",
			text: "if (navigator.gpu) { start(\"WebGPU\"); }\nnavigator.gpu && WebGPU;\n",
			want: []Candidate{{Text: "navigator.gpu", Line: 1}, {Text: "WebGPU", Line: 1}},
		},
		{
			name: "prototype access",
			text: "const last = Array.prototype.at.call(list, -1);",
			want: []Candidate{{Text: "Array.prototype.at.call", Line: 1}, {Text: "Array", Line: 1}},
		},
		{
			name: "first line wins",
			text: "let x = 1;\nnew IntersectionObserver(cb);\nnew IntersectionObserver(other);",
			want: []Candidate{{Text: "IntersectionObserver", Line: 2}},
		},
		{
			name: "short capitalized names are ignored",
			text: "const Foo = Bar;",
			want: nil,
		},
		{
			name: "dollar identifiers",
			text: "$el.dataset",
			want: []Candidate{{Text: "el.dataset", Line: 1}},
		},
		{
			name: "crlf line endings",
			text: "a.b\r\nResizeObserver\r\n",
			want: []Candidate{{Text: "a.b", Line: 1}, {Text: "ResizeObserver", Line: 2}},
		},
		{
			name: "nothing to find",
			text: "let x = 1 + 2;",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanCandidates(tt.text))
		})
	}
}

func TestHeuristicScriptExtractor(t *testing.T) {
	var extractor ScriptExtractor = HeuristicScriptExtractor{}
	got, err := extractor.Candidates(context.Background(), LangTypeScript, []byte("// WebGPU\n"))
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{Text: "WebGPU", Line: 1}}, got)
}

func TestSyntaxScriptExtractor(t *testing.T) {
	loader, err := NewGrammarLoader(nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("javascript skips comments and strings", func(t *testing.T) {
		extractor := NewSyntaxScriptExtractor(loader, false)
		src := "// navigator.usb\nconst a = navigator.gpu.requestAdapter();\nnew WebGPU();\nconst s = \"Array.prototype.at\";\n"
		got, err := extractor.Candidates(ctx, LangJavaScript, []byte(src))
		require.NoError(t, err)
		assert.Equal(t, []Candidate{
			{Text: "navigator.gpu.requestAdapter", Line: 2},
			{Text: "WebGPU", Line: 3},
		}, got)
	})

	t.Run("typescript type names", func(t *testing.T) {
		extractor := NewSyntaxScriptExtractor(loader, false)
		got, err := extractor.Candidates(ctx, LangTypeScript, []byte("let device: GPUDevice = navigator.gpu;\n"))
		require.NoError(t, err)
		assert.Equal(t, []Candidate{
			{Text: "navigator.gpu", Line: 1},
			{Text: "GPUDevice", Line: 1},
		}, got)
	})

	t.Run("syntax errors", func(t *testing.T) {
		src := []byte("const = navigator.gpu;\n")
		_, err := NewSyntaxScriptExtractor(loader, false).Candidates(ctx, LangJavaScript, src)
		assert.Error(t, err)

		got, err := NewSyntaxScriptExtractor(loader, true).Candidates(ctx, LangJavaScript, []byte("navigator.gpu;\n}}}\n"))
		require.NoError(t, err)
		assert.Contains(t, got, Candidate{Text: "navigator.gpu", Line: 1})
	})

	t.Run("unknown grammar", func(t *testing.T) {
		_, err := NewSyntaxScriptExtractor(loader, false).Candidates(ctx, "coffeescript", []byte("x"))
		assert.Error(t, err)
	})
}
