package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"baseline/internal/core/errors"
	"baseline/internal/core/ports"
	"baseline/internal/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extLanguages map[string]string

func (m extLanguages) LanguageFor(path string) string {
	return m[strings.ToLower(filepath.Ext(path))]
}

var webLanguages = extLanguages{".css": "css", ".html": "html", ".js": "javascript", ".ts": "typescript"}

func discoveredPaths(files []ports.SourceFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestFileSourceDiscover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.html":              "",
		"about/index.html":        "",
		"styles/site.css":         "",
		"styles/vendor/reset.css": "",
		"src/app.js":              "",
		"src/app.min.js":          "",
		"src/types.ts":            "",
		"node_modules/x/x.js":     "",
		"dist/bundle.js":          "",
		".git/hooks/hook.js":      "",
		"README.md":               "",
	})

	src, err := NewFileSource(root, []string{"node_modules", "dist", ".git"}, []string{"*.min.js", "styles/vendor/*"}, webLanguages, nil)
	require.NoError(t, err)

	files, err := src.Discover(context.Background(), []string{"**/*.{html,css,js,ts}"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"about/index.html",
		"index.html",
		"src/app.js",
		"src/types.ts",
		"styles/site.css",
	}, discoveredPaths(files))
	assert.Equal(t, "javascript", files[2].Language)
}

func TestFileSourceDiscoverPatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"index.html":       "",
		"styles/site.css":  "",
		"styles/print.css": "",
		"src/app.js":       "",
	})
	src, err := NewFileSource(root, nil, nil, webLanguages, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{name: "single directory", patterns: []string{"styles/*.css"}, want: []string{"styles/print.css", "styles/site.css"}},
		{name: "exact file", patterns: []string{"./index.html"}, want: []string{"index.html"}},
		{name: "root only star", patterns: []string{"*.js"}, want: nil},
		{name: "several patterns", patterns: []string{"**/*.js", "**/site.css"}, want: []string{"src/app.js", "styles/site.css"}},
		{name: "unsupported extension", patterns: []string{"**/*.md"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := src.Discover(context.Background(), tt.patterns)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, files)
				return
			}
			assert.Equal(t, tt.want, discoveredPaths(files))
		})
	}
}

func TestFileSourceDiscoverErrors(t *testing.T) {
	root := t.TempDir()
	src, err := NewFileSource(root, nil, nil, webLanguages, nil)
	require.NoError(t, err)

	_, err = src.Discover(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = src.Discover(context.Background(), []string{"**/*.[css"})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	file := filepath.Join(root, "site.css")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	notDir, err := NewFileSource(file, nil, nil, webLanguages, nil)
	require.NoError(t, err)
	_, err = notDir.Discover(context.Background(), []string{"**/*.css"})
	assert.True(t, errors.IsCode(err, errors.CodeIngestionError))

	_, err = NewFileSource(root, []string{"[bad"}, nil, webLanguages, nil)
	assert.Error(t, err)
}

func TestFileSourceRead(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"styles/site.css": "a { color: red; }"})
	src, err := NewFileSource(root, nil, nil, webLanguages, util.NewPerSecondLimiter(1000))
	require.NoError(t, err)

	data, err := src.Read(context.Background(), ports.SourceFile{Path: "styles/site.css", Language: "css"})
	require.NoError(t, err)
	assert.Equal(t, "a { color: red; }", string(data))

	_, err = src.Read(context.Background(), ports.SourceFile{Path: "styles/gone.css", Language: "css"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIngestionError))
}
