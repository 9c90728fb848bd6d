package parser

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node for an extractor.
// Returns true if the handler consumed the subtree and the walker should not descend.
type NodeHandler func(ctx *walkContext, node *sitter.Node) bool

// walkContext carries the state shared by the handlers of one walk.
type walkContext struct {
	Context  context.Context
	Source   []byte
	Mentions []Mention
	// LineOverride, when positive, replaces node lines (inline style attributes).
	LineOverride int
	found        []rankedCandidate
}

func (c *walkContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *walkContext) Line(node *sitter.Node) int {
	if c.LineOverride > 0 {
		return c.LineOverride
	}
	return int(node.StartPosition().Row) + 1
}

func (c *walkContext) Emit(m Mention) {
	c.Mentions = append(c.Mentions, m)
}

// Walker visits a syntax tree depth-first and dispatches handlers by node kind.
type Walker struct {
	handlers map[string]NodeHandler
}

func NewWalker(handlers map[string]NodeHandler) *Walker {
	return &Walker{handlers: handlers}
}

func (w *Walker) Walk(ctx *walkContext, node *sitter.Node) {
	if node == nil {
		return
	}
	if handler, ok := w.handlers[node.Kind()]; ok && handler(ctx, node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		w.Walk(ctx, node.Child(i))
	}
}

// childOfKind returns the first direct child with the given kind.
func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func skipErrorSubtree(_ *walkContext, _ *sitter.Node) bool {
	return true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
