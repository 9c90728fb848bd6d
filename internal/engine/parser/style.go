package parser

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// StyleExtractor emits one mention per stylesheet declaration. A stylesheet
// with syntax errors is recovered declaration by declaration, dropping only
// the declarations that do not parse.
type StyleExtractor struct {
	pool   *ParserPool
	walker *Walker
}

func NewStyleExtractor(pool *ParserPool) *StyleExtractor {
	e := &StyleExtractor{pool: pool}
	e.walker = NewWalker(map[string]NodeHandler{
		"declaration": e.handleDeclaration,
	})
	return e
}

// Extract returns the declarations of a whole stylesheet.
func (e *StyleExtractor) Extract(ctx context.Context, source []byte) ([]Mention, error) {
	return e.extract(ctx, source, nil, 0)
}

// ExtractInline parses the body of a style attribute. Every mention is
// attributed to line.
func (e *StyleExtractor) ExtractInline(ctx context.Context, declarations string, line int) ([]Mention, error) {
	return e.extract(ctx, []byte("x{"+declarations+"}"), nil, line)
}

// extractRange parses the stylesheet embedded at r inside a larger document.
func (e *StyleExtractor) extractRange(ctx context.Context, document []byte, r sitter.Range) ([]Mention, error) {
	if r.EndByte <= r.StartByte {
		return nil, nil
	}
	return e.extract(ctx, document, []sitter.Range{r}, 0)
}

func (e *StyleExtractor) extract(ctx context.Context, source []byte, ranges []sitter.Range, line int) ([]Mention, error) {
	tree, err := e.pool.Parse(ctx, source, ranges)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		from, to := 0, len(source)
		if len(ranges) > 0 {
			from, to = int(ranges[0].StartByte), int(ranges[0].EndByte)
		}
		return e.recoverDeclarations(ctx, source, from, to, line)
	}

	wc := &walkContext{Context: ctx, Source: source, LineOverride: line}
	e.walker.Walk(wc, root)
	return wc.Mentions, nil
}

func (e *StyleExtractor) handleDeclaration(wc *walkContext, node *sitter.Node) bool {
	name := strings.ToLower(strings.TrimSpace(wc.Text(childOfKind(node, "property_name"))))
	if name == "" {
		return true
	}
	wc.Emit(Mention{
		Kind:  KindStyle,
		Name:  name,
		Value: declarationValue(wc, node),
		Line:  wc.Line(node),
	})
	return true
}

// declarationValue returns the source text between the colon and the
// terminator, without !important, whitespace runs collapsed.
func declarationValue(wc *walkContext, node *sitter.Node) string {
	var first, last *sitter.Node
	afterColon := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		kind := child.Kind()
		if !afterColon {
			afterColon = kind == ":"
			continue
		}
		switch kind {
		case ";", "important", "comment":
			continue
		}
		if first == nil {
			first = child
		}
		last = child
	}
	if first == nil {
		return ""
	}

	value := collapseSpace(string(wc.Source[first.StartByte():last.EndByte()]))
	if idx := strings.LastIndex(strings.ToLower(value), "!important"); idx >= 0 && idx == len(value)-len("!important") {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}
