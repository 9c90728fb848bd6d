package parser

import (
	"bytes"
	"context"

	sitter "github.com/tree-sitter/go-tree-sitter"
	xhtml "golang.org/x/net/html"
)

// extractTokens reads source with the HTML5 tokenizer, which accepts any
// input. It emits the same mentions as the syntax-tree walk: one per start
// or self-closing tag, plus inline styles, style bodies and script bodies.
func (e *MarkupExtractor) extractTokens(ctx context.Context, source []byte) ([]Mention, error) {
	z := xhtml.NewTokenizer(bytes.NewReader(source))
	wc := &walkContext{Context: ctx, Source: source}

	var (
		offset int
		line   = 1
		// raw-text element whose body is the next text token
		pending     string
		pendingLine int
		pendingType string
	)
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Raw token bytes partition the input, so offsets index source.
		start, startLine := offset, line
		offset = min(offset+len(z.Raw()), len(source))
		line += bytes.Count(source[start:offset], []byte{'\n'})

		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			attrs := tokenAttributes(tok)
			e.emitElement(wc, tok.Data, attrs["style"], startLine)

			pending = ""
			if tt == xhtml.StartTagToken && (tok.Data == "script" || tok.Data == "style") {
				pending, pendingLine, pendingType = tok.Data, startLine, attrs["type"]
			}
		case xhtml.TextToken:
			switch pending {
			case "script":
				if isScriptType(pendingType) {
					e.emitScript(wc, source[start:offset], pendingLine)
				}
			case "style":
				e.emitStyle(wc, byteRange(source, start, offset), pendingLine)
			}
			pending = ""
		default:
			pending = ""
		}
	}
	return wc.Mentions, nil
}

// tokenAttributes keys a tag's attributes by name. The first occurrence of
// a repeated attribute wins.
func tokenAttributes(tok xhtml.Token) map[string]string {
	out := make(map[string]string, len(tok.Attr))
	for _, a := range tok.Attr {
		if _, seen := out[a.Key]; !seen {
			out[a.Key] = a.Val
		}
	}
	return out
}

// byteRange describes source[start:end] with the row and column positions
// tree-sitter needs for an included range.
func byteRange(source []byte, start, end int) sitter.Range {
	return sitter.Range{
		StartByte:  uint(start),
		EndByte:    uint(end),
		StartPoint: pointAt(source, start),
		EndPoint:   pointAt(source, end),
	}
}

func pointAt(source []byte, offset int) sitter.Point {
	prefix := source[:offset]
	column := offset
	if nl := bytes.LastIndexByte(prefix, '\n'); nl >= 0 {
		column = offset - nl - 1
	}
	return sitter.Point{
		Row:    uint(bytes.Count(prefix, []byte{'\n'})),
		Column: uint(column),
	}
}
