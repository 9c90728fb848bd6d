package resolver

import (
	"log/slog"
	"strings"
	"sync"

	"baseline/internal/core/ports"
	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
	"baseline/internal/engine/report"
)

// Resolver maps mentions to catalog features. It only reads the catalog and
// is safe for concurrent use by scan workers.
type Resolver struct {
	catalog ports.FeatureCatalog
	index   []searchEntry
	// seed -> *catalog.Feature, nil for candidates nothing matches.
	searches sync.Map
}

func New(cat ports.FeatureCatalog) *Resolver {
	return &Resolver{catalog: cat, index: buildSearchIndex(cat.Features())}
}

// Resolve returns the record for a mention. Unresolved mentions report
// false; they are dropped, not errors.
func (r *Resolver) Resolve(m parser.Mention) (report.Record, bool) {
	key, ok := Normalize(m)
	if !ok {
		return report.Record{}, false
	}
	if key.Kind == parser.KindScript {
		return r.resolveScript(key, m.Line)
	}
	return r.resolveKeyed(key, m.Line)
}

// ResolveAll resolves mentions in order, dropping the unresolved ones.
func (r *Resolver) ResolveAll(mentions []parser.Mention) []report.Record {
	out := make([]report.Record, 0, len(mentions))
	for _, m := range mentions {
		if rec, ok := r.Resolve(m); ok {
			out = append(out, rec)
		}
	}
	return out
}

// resolveKeyed walks the style and markup fallback chain: the full key, the
// parent property key, then features listing the full key.
func (r *Resolver) resolveKeyed(key Key, line int) (report.Record, bool) {
	usedKey := key.Value
	via := report.ViaDirect
	status, ok := r.statusOf(key.Value)

	if !ok && key.Parent != "" {
		if status, ok = r.statusOf(key.Parent); ok {
			usedKey = key.Parent
			via = report.ViaParent
		}
	}

	if !ok {
		for _, f := range r.featuresForKey(key.Value) {
			if f.Status == nil {
				continue
			}
			status, ok = *f.Status, true
			via = report.ViaReverse
			if len(f.CompatKeys) > 0 {
				usedKey = f.CompatKeys[0]
			}
			break
		}
	}

	if !ok {
		return report.Record{}, false
	}

	rec := report.Record{
		Key:    usedKey,
		Kind:   key.Kind,
		Name:   usedKey,
		Status: status,
		Line:   line,
		Via:    via,
	}
	if f := r.displayFeature(usedKey); f != nil {
		rec.FeatureID = f.ID
		rec.Name = f.DisplayName()
	}
	return rec, true
}

// displayFeature returns the earliest feature that lists key, or whose id is
// key or key's first dot segment.
func (r *Resolver) displayFeature(key string) *catalog.Feature {
	var best *catalog.Feature
	consider := func(f *catalog.Feature) {
		if f != nil && (best == nil || f.Order < best.Order) {
			best = f
		}
	}

	if list := r.featuresForKey(key); len(list) > 0 {
		consider(list[0])
	}
	if f, ok := r.featureByID(key); ok {
		consider(f)
	}
	if head, _, found := strings.Cut(key, "."); found {
		if f, ok := r.featureByID(head); ok {
			consider(f)
		}
	}
	return best
}

func (r *Resolver) resolveScript(key Key, line int) (report.Record, bool) {
	f := r.search(key.Value)
	if f == nil {
		return report.Record{}, false
	}
	status := catalog.NoneStatus()
	if f.Status != nil {
		status = *f.Status
	}
	return report.Record{
		Key:       key.Raw,
		Kind:      key.Kind,
		FeatureID: f.ID,
		Name:      f.DisplayName(),
		Status:    status,
		Line:      line,
		Via:       report.ViaSearch,
	}, true
}

// The catalog lookups below treat a panicking catalog as "not found".

func (r *Resolver) statusOf(key string) (status catalog.SupportStatus, ok bool) {
	defer recoverLookup("status", key, func() { status, ok = catalog.SupportStatus{}, false })
	return r.catalog.StatusOf(key)
}

func (r *Resolver) featuresForKey(key string) (list []*catalog.Feature) {
	defer recoverLookup("features_for_key", key, func() { list = nil })
	return r.catalog.FeaturesForKey(key)
}

func (r *Resolver) featureByID(id string) (f *catalog.Feature, ok bool) {
	defer recoverLookup("feature_by_id", id, func() { f, ok = nil, false })
	return r.catalog.FeatureByID(id)
}

func recoverLookup(op, key string, reset func()) {
	if p := recover(); p != nil {
		slog.Debug("catalog lookup failed", "operation", op, "key", key, "panic", p)
		reset()
	}
}
