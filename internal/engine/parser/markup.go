package parser

import (
	"context"
	"html"
	"log/slog"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var scriptMIMETypes = map[string]bool{
	"":                         true,
	"module":                   true,
	"text/javascript":          true,
	"text/ecmascript":          true,
	"text/jsx":                 true,
	"application/javascript":   true,
	"application/ecmascript":   true,
	"application/x-javascript": true,
}

// MarkupExtractor emits one mention per element tag, folds in inline and
// embedded stylesheets, and forwards script bodies to a ScriptExtractor.
// Documents the grammar cannot parse cleanly are read with an HTML5
// tokenizer instead, so malformed markup still yields its tags.
type MarkupExtractor struct {
	pool   *ParserPool
	style  *StyleExtractor
	script ScriptExtractor
	walker *Walker
}

func NewMarkupExtractor(pool *ParserPool, style *StyleExtractor, script ScriptExtractor) *MarkupExtractor {
	e := &MarkupExtractor{pool: pool, style: style, script: script}
	e.walker = NewWalker(map[string]NodeHandler{
		"start_tag":        e.handleTag,
		"self_closing_tag": e.handleTag,
		"script_element":   e.handleScript,
		"style_element":    e.handleStyle,
	})
	return e
}

func (e *MarkupExtractor) Extract(ctx context.Context, source []byte) ([]Mention, error) {
	tree, err := e.pool.Parse(ctx, source, nil)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Debug("markup has syntax errors, falling back to tokenizer")
		return e.extractTokens(ctx, source)
	}

	wc := &walkContext{Context: ctx, Source: source}
	e.walker.Walk(wc, root)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return wc.Mentions, nil
}

func (e *MarkupExtractor) handleTag(wc *walkContext, node *sitter.Node) bool {
	e.emitTag(wc, node)
	return true
}

func (e *MarkupExtractor) emitTag(wc *walkContext, tag *sitter.Node) {
	name := strings.ToLower(strings.TrimSpace(wc.Text(childOfKind(tag, "tag_name"))))
	if name == "" {
		return
	}
	e.emitElement(wc, name, attributes(wc, tag)["style"], wc.Line(tag))
}

// emitElement records a tag and the declarations of its style attribute.
func (e *MarkupExtractor) emitElement(wc *walkContext, name, style string, line int) {
	wc.Emit(Mention{Kind: KindMarkup, Name: name, Line: line})

	style = strings.TrimSpace(style)
	if style == "" {
		return
	}
	mentions, err := e.style.ExtractInline(wc.Context, style, line)
	if err != nil {
		slog.Debug("skipping inline style", "tag", name, "line", line, "error", err)
		return
	}
	wc.Mentions = append(wc.Mentions, mentions...)
}

func (e *MarkupExtractor) handleScript(wc *walkContext, node *sitter.Node) bool {
	start := childOfKind(node, "start_tag")
	if start == nil {
		return false
	}
	e.emitTag(wc, start)

	if !isScriptType(attributes(wc, start)["type"]) {
		return true
	}
	body := childOfKind(node, "raw_text")
	if body == nil {
		return true
	}

	e.emitScript(wc, []byte(wc.Text(body)), wc.Line(node))
	return true
}

// emitScript records the candidates of a script body at the line of its
// element.
func (e *MarkupExtractor) emitScript(wc *walkContext, body []byte, line int) {
	candidates, err := e.script.Candidates(wc.Context, LangJavaScript, body)
	if err != nil {
		slog.Debug("skipping script body", "line", line, "error", err)
		return
	}
	for _, c := range candidates {
		wc.Emit(Mention{Kind: KindScript, Name: c.Text, Line: line})
	}
}

func (e *MarkupExtractor) handleStyle(wc *walkContext, node *sitter.Node) bool {
	start := childOfKind(node, "start_tag")
	if start == nil {
		return false
	}
	e.emitTag(wc, start)

	body := childOfKind(node, "raw_text")
	if body == nil {
		return true
	}
	e.emitStyle(wc, body.Range(), wc.Line(node))
	return true
}

// emitStyle records the declarations of the stylesheet embedded at r.
func (e *MarkupExtractor) emitStyle(wc *walkContext, r sitter.Range, line int) {
	mentions, err := e.style.extractRange(wc.Context, wc.Source, r)
	if err != nil {
		slog.Debug("skipping style element", "line", line, "error", err)
		return
	}
	wc.Mentions = append(wc.Mentions, mentions...)
}

// attributes returns the decoded attribute values of a tag, keyed by
// lower-cased name. The first occurrence of a repeated attribute wins.
func attributes(wc *walkContext, tag *sitter.Node) map[string]string {
	out := make(map[string]string)
	for i := uint(0); i < tag.ChildCount(); i++ {
		attr := tag.Child(i)
		if attr.Kind() != "attribute" {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(wc.Text(childOfKind(attr, "attribute_name"))))
		if name == "" {
			continue
		}
		if _, seen := out[name]; seen {
			continue
		}
		value := ""
		if v := childOfKind(attr, "attribute_value"); v != nil {
			value = wc.Text(v)
		} else if q := childOfKind(attr, "quoted_attribute_value"); q != nil {
			value = wc.Text(childOfKind(q, "attribute_value"))
		}
		out[name] = html.UnescapeString(value)
	}
	return out
}

func isScriptType(value string) bool {
	mime := strings.ToLower(strings.TrimSpace(value))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return scriptMIMETypes[mime]
}
