package parser

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"baseline/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var capitalizedIdentifier = regexp.MustCompile(`^[A-Z][A-Za-z0-9_$]{3,}$`)

const (
	rankChain = iota
	rankCapitalized
)

type rankedCandidate struct {
	text   string
	line   int
	rank   int
	offset uint
}

// SyntaxScriptExtractor finds candidates on a real syntax tree: maximal
// member-expression chains over plain identifiers, and capitalized
// identifiers. It keeps the per-line ordering of the heuristic extractor
// but ignores comments and string contents.
type SyntaxScriptExtractor struct {
	loader   *GrammarLoader
	tolerate bool
	walker   *Walker
}

func NewSyntaxScriptExtractor(loader *GrammarLoader, tolerateErrors bool) *SyntaxScriptExtractor {
	e := &SyntaxScriptExtractor{loader: loader, tolerate: tolerateErrors}
	handlers := map[string]NodeHandler{
		"member_expression": e.handleMember,
		"identifier":        e.handleIdentifier,
		"type_identifier":   e.handleIdentifier,
	}
	if tolerateErrors {
		handlers["ERROR"] = skipErrorSubtree
	}
	e.walker = NewWalker(handlers)
	return e
}

func (e *SyntaxScriptExtractor) Candidates(ctx context.Context, lang string, source []byte) ([]Candidate, error) {
	pool := e.loader.Pool(lang)
	if pool == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotSupported, fmt.Sprintf("no script grammar for %q", lang)),
			errors.CtxLanguage, lang,
		)
	}

	tree, err := pool.Parse(ctx, source, nil)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !e.tolerate {
		return nil, errors.AddContext(errors.New(errors.CodeParseError, "script has syntax errors"), errors.CtxLanguage, lang)
	}

	wc := &walkContext{Context: ctx, Source: source}
	e.walker.Walk(wc, root)

	sort.SliceStable(wc.found, func(i, j int) bool {
		a, b := wc.found[i], wc.found[j]
		if a.line != b.line {
			return a.line < b.line
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.offset < b.offset
	})

	var set candidateSet
	for _, c := range wc.found {
		set.add(c.text, c.line)
	}
	return set.list, nil
}

func (e *SyntaxScriptExtractor) handleMember(wc *walkContext, node *sitter.Node) bool {
	segments, ok := memberChain(node)
	if !ok {
		return false
	}

	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = wc.Text(seg)
	}
	wc.found = append(wc.found, rankedCandidate{
		text:   strings.Join(parts, "."),
		line:   wc.Line(node),
		rank:   rankChain,
		offset: node.StartByte(),
	})
	for i, seg := range segments {
		if capitalizedIdentifier.MatchString(parts[i]) {
			wc.found = append(wc.found, rankedCandidate{
				text:   parts[i],
				line:   wc.Line(seg),
				rank:   rankCapitalized,
				offset: seg.StartByte(),
			})
		}
	}
	return true
}

func (e *SyntaxScriptExtractor) handleIdentifier(wc *walkContext, node *sitter.Node) bool {
	text := wc.Text(node)
	if capitalizedIdentifier.MatchString(text) {
		wc.found = append(wc.found, rankedCandidate{
			text:   text,
			line:   wc.Line(node),
			rank:   rankCapitalized,
			offset: node.StartByte(),
		})
	}
	return true
}

// memberChain flattens a.b.c into its identifier segments. Chains through
// calls, subscripts, this, or private fields are not plain chains.
func memberChain(node *sitter.Node) ([]*sitter.Node, bool) {
	object := node.ChildByFieldName("object")
	property := node.ChildByFieldName("property")
	if object == nil || property == nil || property.Kind() != "property_identifier" {
		return nil, false
	}

	switch object.Kind() {
	case "identifier":
		return []*sitter.Node{object, property}, true
	case "member_expression":
		inner, ok := memberChain(object)
		if !ok {
			return nil, false
		}
		return append(inner, property), true
	default:
		return nil, false
	}
}
