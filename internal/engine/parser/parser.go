package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"baseline/internal/core/errors"
)

// Options controls how units are parsed.
type Options struct {
	// TolerateErrors lets the syntax script extractor walk around syntax
	// errors instead of rejecting the unit. Markup and stylesheets always
	// recover.
	TolerateErrors bool
	// SyntaxScripts selects the tree-sitter script extractor over the lexical one.
	SyntaxScripts bool
}

// Parser turns source units into raw mentions.
type Parser struct {
	loader     *GrammarLoader
	registry   map[string]LanguageSpec
	extensions map[string]string
	style      *StyleExtractor
	markup     *MarkupExtractor
	script     ScriptExtractor
}

func NewParser(loader *GrammarLoader, opts Options) *Parser {
	p := &Parser{
		loader:     loader,
		registry:   loader.LanguageRegistry(),
		extensions: make(map[string]string),
	}
	for lang, spec := range p.registry {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
	}

	p.style = NewStyleExtractor(loader.Pool(LangCSS))
	if opts.SyntaxScripts {
		p.script = NewSyntaxScriptExtractor(loader, opts.TolerateErrors)
	} else {
		p.script = HeuristicScriptExtractor{}
	}
	p.markup = NewMarkupExtractor(loader.Pool(LangHTML), p.style, p.script)
	return p
}

// SetScriptExtractor replaces the extractor used for script files and
// markup script bodies.
func (p *Parser) SetScriptExtractor(e ScriptExtractor) {
	p.script = e
	p.markup.script = e
}

// ParseUnit extracts the mentions of one unit. A unit that cannot be
// recovered from its syntax errors yields a CodeParseError.
func (p *Parser) ParseUnit(ctx context.Context, unit Unit) ([]Mention, error) {
	lang := unit.Language
	if lang == "" {
		lang = p.LanguageFor(unit.Path)
	}
	spec, ok := p.registry[lang]
	if !ok || lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, unit.Path)
	}

	var (
		mentions []Mention
		err      error
	)
	switch spec.Kind {
	case KindStyle:
		mentions, err = p.style.Extract(ctx, unit.Source)
	case KindMarkup:
		mentions, err = p.markup.Extract(ctx, unit.Source)
	case KindScript:
		var candidates []Candidate
		candidates, err = p.script.Candidates(ctx, lang, unit.Source)
		mentions = make([]Mention, 0, len(candidates))
		for _, c := range candidates {
			mentions = append(mentions, Mention{Kind: KindScript, Name: c.Text, Line: c.Line})
		}
	default:
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("language %q has no extractor kind", lang))
	}

	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, unit.Path)
	}
	return mentions, nil
}

// LanguageFor returns the enabled language owning path's extension, or "".
func (p *Parser) LanguageFor(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}
