package parser

import (
	"context"
	"regexp"
	"strings"
)

// ScriptExtractor finds API-like identifiers in script text. Candidates are
// unique by text and ordered by first occurrence.
type ScriptExtractor interface {
	Candidates(ctx context.Context, lang string, source []byte) ([]Candidate, error)
}

var (
	// Dotted member chains, optionally through ".prototype.": navigator.gpu, Array.prototype.at.
	dottedChainPattern = regexp.MustCompile(`\b[A-Za-z_$][A-Za-z0-9_$]*(?:\.(?:prototype\.)?[A-Za-z_$][A-Za-z0-9_$]*)+`)
	// Constructor or namespace like names of at least four characters: WebGPU, IntersectionObserver.
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9_$]{3,}\b`)
)

// HeuristicScriptExtractor is the lexical extractor. It over-approximates:
// identifiers in comments and strings are reported too, and resolution
// filters them out.
type HeuristicScriptExtractor struct{}

func (HeuristicScriptExtractor) Candidates(_ context.Context, _ string, source []byte) ([]Candidate, error) {
	return ScanCandidates(string(source)), nil
}

// ScanCandidates applies the dotted-chain rule and then the capitalized rule
// to each line.
func ScanCandidates(text string) []Candidate {
	var set candidateSet
	for i, line := range strings.Split(text, "\n") {
		for _, match := range dottedChainPattern.FindAllString(line, -1) {
			set.add(match, i+1)
		}
		for _, match := range capitalizedPattern.FindAllString(line, -1) {
			set.add(match, i+1)
		}
	}
	return set.list
}

type candidateSet struct {
	seen map[string]bool
	list []Candidate
}

func (s *candidateSet) add(text string, line int) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if text == "" || s.seen[text] {
		return
	}
	s.seen[text] = true
	s.list = append(s.list, Candidate{Text: text, Line: line})
}
