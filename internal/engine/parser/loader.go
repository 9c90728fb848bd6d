package parser

import (
	"fmt"

	"baseline/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// GrammarLoader owns the compiled-in grammars and one parser pool per
// grammar. Every grammar is loaded even when its language is disabled for
// file detection, because markup embeds stylesheets and scripts.
type GrammarLoader struct {
	languages map[string]*sitter.Language
	pools     map[string]*ParserPool
	registry  map[string]LanguageSpec
}

func NewGrammarLoader(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	if registry == nil {
		registry = DefaultLanguageRegistry()
	}

	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		pools:     make(map[string]*ParserPool),
		registry:  cloneLanguageRegistry(registry),
	}

	for _, langID := range util.SortedStringKeys(gl.registry) {
		if _, err := grammarFor(langID); err != nil {
			return nil, err
		}
	}
	for _, langID := range []string{LangCSS, LangHTML, LangJavaScript, LangTypeScript, LangTSX} {
		lang, err := grammarFor(langID)
		if err != nil {
			return nil, err
		}
		gl.languages[langID] = lang
		gl.pools[langID] = NewParserPool(langID, lang)
	}
	return gl, nil
}

func grammarFor(langID string) (*sitter.Language, error) {
	switch langID {
	case LangCSS:
		return sitter.NewLanguage(tree_sitter_css.Language()), nil
	case LangHTML:
		return sitter.NewLanguage(tree_sitter_html.Language()), nil
	case LangJavaScript:
		return sitter.NewLanguage(tree_sitter_javascript.Language()), nil
	case LangTypeScript:
		return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()), nil
	case LangTSX:
		return sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()), nil
	default:
		return nil, fmt.Errorf("language %q is configured but no grammar is compiled in", langID)
	}
}

// Pool returns the parser pool for a language, or nil if none is loaded.
func (gl *GrammarLoader) Pool(langID string) *ParserPool {
	return gl.pools[langID]
}

func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	return cloneLanguageRegistry(gl.registry)
}
