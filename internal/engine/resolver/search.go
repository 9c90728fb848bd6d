package resolver

import (
	"strings"

	"baseline/internal/engine/catalog"
)

const (
	matchExact = iota
	matchSubstring
	matchNone
)

type searchEntry struct {
	feature *catalog.Feature
	id      string
	name    string
	keys    []string
}

func buildSearchIndex(features []*catalog.Feature) []searchEntry {
	index := make([]searchEntry, 0, len(features))
	for _, f := range features {
		entry := searchEntry{
			feature: f,
			id:      strings.ToLower(f.ID),
			name:    strings.ToLower(f.Name),
			keys:    make([]string, 0, len(f.CompatKeys)),
		}
		for _, key := range f.CompatKeys {
			entry.keys = append(entry.keys, strings.ToLower(key))
		}
		index = append(index, entry)
	}
	return index
}

// search finds the feature for a script seed. A feature matches when its id,
// name, or one of its compat keys contains the seed. Exact matches (the whole
// id, name, key, key without "api.", or the key's last segment) rank ahead of
// plain substring matches; within a rank the earliest feature in catalog
// order wins. Results are memoized per seed.
func (r *Resolver) search(seed string) *catalog.Feature {
	if seed == "" {
		return nil
	}
	if cached, ok := r.searches.Load(seed); ok {
		return cached.(*catalog.Feature)
	}

	var (
		best     *catalog.Feature
		bestRank = matchNone
	)
	for i := range r.index {
		rank := r.index[i].match(seed)
		if rank >= bestRank {
			continue
		}
		// The index is in catalog order, so the first hit of a rank is the earliest.
		best, bestRank = r.index[i].feature, rank
		if rank == matchExact {
			break
		}
	}

	actual, _ := r.searches.LoadOrStore(seed, best)
	return actual.(*catalog.Feature)
}

func (e *searchEntry) match(seed string) int {
	if e.id == seed || e.name == seed {
		return matchExact
	}
	for _, key := range e.keys {
		if key == seed || strings.TrimPrefix(key, apiPrefix) == seed || lastSegment(key) == seed {
			return matchExact
		}
	}

	if strings.Contains(e.id, seed) || strings.Contains(e.name, seed) {
		return matchSubstring
	}
	for _, key := range e.keys {
		if strings.Contains(key, seed) {
			return matchSubstring
		}
	}
	return matchNone
}

func lastSegment(key string) string {
	if idx := strings.LastIndexByte(key, '.'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
