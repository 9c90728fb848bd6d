package parser

import (
	"bytes"
	"context"
)

// span is a half-open byte range of a source.
type span struct {
	start, end int
}

// recoverDeclarations re-parses each candidate declaration of source[from:to]
// on its own and keeps those that parse. Lines come from the position of the
// declaration in source unless line is positive.
func (e *StyleExtractor) recoverDeclarations(ctx context.Context, source []byte, from, to, line int) ([]Mention, error) {
	var (
		mentions []Mention
		counted  int
		row      = 1
	)
	for _, s := range declarationSpans(source, from, to) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if source[s.start] == '@' {
			continue
		}
		row += bytes.Count(source[counted:s.start], []byte{'\n'})
		counted = s.start

		declLine := line
		if declLine <= 0 {
			declLine = row
		}
		found, err := e.parseDeclaration(ctx, source[s.start:s.end], declLine)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, found...)
	}
	return mentions, nil
}

// parseDeclaration returns the mention of a single declaration, or nothing
// when it does not parse.
func (e *StyleExtractor) parseDeclaration(ctx context.Context, decl []byte, line int) ([]Mention, error) {
	wrapped := make([]byte, 0, len(decl)+3)
	wrapped = append(wrapped, "x{"...)
	wrapped = append(wrapped, decl...)
	wrapped = append(wrapped, '}')

	tree, err := e.pool.Parse(ctx, wrapped, nil)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, nil
	}
	wc := &walkContext{Context: ctx, Source: wrapped, LineOverride: line}
	e.walker.Walk(wc, root)
	return wc.Mentions, nil
}

// declarationSpans splits source[from:to] the way CSS error recovery does:
// a top-level ';' or '}' ends a declaration, a '{' discards the prelude
// before it. Comments are skipped; strings and parenthesized blocks are kept
// whole. Spans start at their first significant byte.
func declarationSpans(source []byte, from, to int) []span {
	if to > len(source) {
		to = len(source)
	}
	var (
		spans []span
		start = -1
		depth int
	)
	for i := from; i < to; i++ {
		c := source[i]
		switch {
		case c == '/' && i+1 < to && source[i+1] == '*':
			end := bytes.Index(source[i+2:to], []byte("*/"))
			if end < 0 {
				i = to
			} else {
				i += end + 3
			}
		case c == '"' || c == '\'':
			if start < 0 {
				start = i
			}
			i = skipString(source, i, to)
		case c == '(' || c == '[':
			if start < 0 {
				start = i
			}
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case c == '}' || (c == ';' && depth == 0):
			if start >= 0 {
				spans = append(spans, span{start, i})
			}
			start, depth = -1, 0
		case c == '{' && depth == 0:
			start = -1
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, to})
	}
	return spans
}

// skipString returns the index of the quote closing the string opened at
// i, or of the last byte before an unescaped newline or to.
func skipString(source []byte, i, to int) int {
	quote := source[i]
	for j := i + 1; j < to; j++ {
		switch source[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			return j - 1
		}
	}
	return to - 1
}
