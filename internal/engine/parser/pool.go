package parser

import (
	"context"
	"sync"
	"sync/atomic"

	"baseline/internal/core/errors"
	"baseline/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for a single grammar.
//
//	tree, err := pool.Parse(ctx, source, nil)
//	if err != nil { ... }
//	defer tree.Close()
//
// Safe for concurrent use.
type ParserPool struct {
	name   string
	lang   *sitter.Language
	pool   sync.Pool
	leased atomic.Int64
}

// NewParserPool creates a pool for the given grammar. The language must
// remain valid for the lifetime of the pool.
func NewParserPool(name string, lang *sitter.Language) *ParserPool {
	p := &ParserPool{name: name, lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get leases a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// The language may have been cleared by an external Reset.
	_ = sp.SetLanguage(p.lang)
	p.leased.Add(1)
	observability.ParserPoolLeased.WithLabelValues(p.name).Inc()
	return sp
}

// Put resets sp and returns it to the pool. Callers must not use sp afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	observability.ParserPoolLeased.WithLabelValues(p.name).Dec()
	_ = sp.SetIncludedRanges(nil)
	sp.Reset()
	p.pool.Put(sp)
}

// Parse parses source, restricted to ranges when any are given. Positions in
// the returned tree are relative to the whole of source, so embedded
// fragments keep their real line numbers. The caller closes the tree.
func (p *ParserPool) Parse(ctx context.Context, source []byte, ranges []sitter.Range) (*sitter.Tree, error) {
	sp := p.Get()
	defer p.Put(sp)

	if len(ranges) > 0 {
		if err := sp.SetIncludedRanges(ranges); err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "set included ranges"), errors.CtxLanguage, p.name)
		}
	}

	length := len(source)
	tree := sp.ParseWithOptions(func(i int, _ sitter.Point) []byte {
		if i < length {
			return source[i:]
		}
		return []byte{}
	}, nil, &sitter.ParseOptions{
		ProgressCallback: func(sitter.ParseState) bool { return ctx.Err() != nil },
	})
	if tree == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxLanguage, p.name)
	}
	return tree, nil
}

// Stats returns the number of parsers currently leased.
func (p *ParserPool) Stats() int {
	return int(p.leased.Load())
}
