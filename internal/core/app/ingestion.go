package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"baseline/internal/core/errors"
	"baseline/internal/core/ports"
	"baseline/internal/shared/util"

	"github.com/gobwas/glob"
)

// FileSource discovers and reads source files below a root directory.
// Paths it reports are slash-separated and relative to the root.
type FileSource struct {
	root         string
	languages    languageDetector
	excludeDirs  []glob.Glob
	excludeFiles []pathGlob
	limiter      *util.Limiter
}

type languageDetector interface {
	LanguageFor(path string) string
}

// pathGlob matches the base name, or the whole relative path when the
// pattern itself contains a separator.
type pathGlob struct {
	g        glob.Glob
	fullPath bool
}

func (p pathGlob) match(rel string) bool {
	if p.fullPath {
		return p.g.Match(rel)
	}
	return p.g.Match(filepath.Base(rel))
}

var _ ports.SourceProvider = (*FileSource)(nil)

// NewFileSource builds a source rooted at root. A nil limiter reads without throttling.
func NewFileSource(root string, excludeDirs, excludeFiles []string, languages languageDetector, limiter *util.Limiter) (*FileSource, error) {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	dirGlobs, err := compileGlobs(excludeDirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs := make([]pathGlob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		full := util.ContainsPathSeparator(p)
		var g glob.Glob
		if full {
			g, err = glob.Compile(util.NormalizePatternPath(p), '/')
		} else {
			g, err = glob.Compile(p)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude file pattern %q", p))
		}
		fileGlobs = append(fileGlobs, pathGlob{g: g, fullPath: full})
	}
	return &FileSource{
		root:         filepath.Clean(root),
		languages:    languages,
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
		limiter:      limiter,
	}, nil
}

func (s *FileSource) Root() string {
	return s.root
}

// Discover walks the root and returns the supported files matching any of
// patterns, sorted by path. Unreadable subdirectories are skipped; only a
// missing or unreadable root is an error.
func (s *FileSource) Discover(ctx context.Context, patterns []string) ([]ports.SourceFile, error) {
	include, err := compileIncludes(patterns)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(s.root)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIngestionError, "scan root is not accessible"), errors.CtxPath, s.root)
	}
	if !info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeIngestionError, "scan root is not a directory"), errors.CtxPath, s.root)
	}

	var files []ports.SourceFile
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == s.root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == s.root {
				return nil
			}
			base := d.Name()
			for _, g := range s.excludeDirs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = util.NormalizePatternPath(filepath.ToSlash(rel))

		lang := s.languages.LanguageFor(rel)
		if lang == "" {
			return nil
		}
		if !matchAny(include, rel) {
			return nil
		}
		for _, g := range s.excludeFiles {
			if g.match(rel) {
				return nil
			}
		}

		files = append(files, ports.SourceFile{Path: rel, Language: lang})
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIngestionError, "walk scan root"), errors.CtxPath, s.root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Read returns the contents of a discovered file, waiting on the limiter first.
func (s *FileSource) Read(ctx context.Context, file ports.SourceFile) ([]byte, error) {
	if err := s.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(file.Path)))
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIngestionError, "read source file"), errors.CtxPath, file.Path)
	}
	return data, nil
}

// compileIncludes compiles include patterns against slash-separated relative
// paths. A leading "**/" also matches files directly under the root.
func compileIncludes(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, raw := range patterns {
		p := util.NormalizePatternPath(raw)
		if p == "" {
			continue
		}
		variants := []string{p}
		if rest, ok := strings.CutPrefix(p, "**/"); ok && rest != "" {
			variants = append(variants, rest)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid include pattern %q", raw))
			}
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.CodeValidationError, "at least one include pattern is required")
	}
	return out, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid %s pattern %q", label, p))
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
