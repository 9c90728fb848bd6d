package catalog

import (
	"sort"
	"strings"
	"time"
)

// Feature is one catalog entry. Status is nil when the source declares none;
// Declared keeps the published form Status was normalized from.
type Feature struct {
	ID         string
	Name       string
	CompatKeys []string
	Status     *SupportStatus
	Declared   *Declaration
	// Order is the position of the feature in the source, used for deterministic tie-breaks.
	Order int
}

// DisplayName returns the human-readable name, falling back to the id.
func (f *Feature) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// FeatureSpec describes a feature to be added to a catalog.
type FeatureSpec struct {
	ID         string
	Name       string
	CompatKeys []string
	Status     *Declaration
}

// Catalog is the read-only compatibility catalog. It is built once and is
// safe for concurrent use.
type Catalog struct {
	asOf      time.Time
	features  []*Feature
	byID      map[string]*Feature
	byKey     map[string][]*Feature
	keyStatus map[string]SupportStatus
	keyDecl   map[string]Declaration
}

// New builds a catalog. Feature order is preserved; duplicate ids keep the
// first occurrence. A zero asOf means the current time.
func New(asOf time.Time, features []FeatureSpec, keyStatuses map[string]Declaration) *Catalog {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	c := &Catalog{
		asOf:      asOf,
		features:  make([]*Feature, 0, len(features)),
		byID:      make(map[string]*Feature, len(features)),
		byKey:     make(map[string][]*Feature),
		keyStatus: make(map[string]SupportStatus, len(keyStatuses)),
		keyDecl:   make(map[string]Declaration, len(keyStatuses)),
	}

	for _, spec := range features {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			continue
		}
		if _, dup := c.byID[id]; dup {
			continue
		}
		f := &Feature{
			ID:         id,
			Name:       strings.TrimSpace(spec.Name),
			CompatKeys: compactKeys(spec.CompatKeys),
			Order:      len(c.features),
		}
		if spec.Status != nil {
			status := spec.Status.Normalize(asOf)
			declared := spec.Status.clone()
			f.Status, f.Declared = &status, &declared
		}
		c.features = append(c.features, f)
		c.byID[id] = f
		for _, key := range f.CompatKeys {
			c.byKey[key] = append(c.byKey[key], f)
		}
	}

	for key, decl := range keyStatuses {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		c.keyStatus[key] = decl.Normalize(asOf)
		c.keyDecl[key] = decl.clone()
	}
	return c
}

// AsOf returns the computation time statuses were checked against.
func (c *Catalog) AsOf() time.Time { return c.asOf }

// StatusOf returns the status indexed for a compat key. Unknown or malformed
// keys report false.
func (c *Catalog) StatusOf(key string) (SupportStatus, bool) {
	if c == nil {
		return SupportStatus{}, false
	}
	status, ok := c.keyStatus[strings.TrimSpace(key)]
	return status, ok
}

// Features returns all features in catalog order. Callers must not mutate them.
func (c *Catalog) Features() []*Feature {
	if c == nil {
		return nil
	}
	return c.features
}

func (c *Catalog) FeatureByID(id string) (*Feature, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.byID[id]
	return f, ok
}

// FeaturesForKey returns the features listing key among their compat keys, in catalog order.
func (c *Catalog) FeaturesForKey(key string) []*Feature {
	if c == nil {
		return nil
	}
	return c.byKey[key]
}

// DeclarationOf returns the published status of key as the source declared
// it, before normalization.
func (c *Catalog) DeclarationOf(key string) (Declaration, bool) {
	if c == nil {
		return Declaration{}, false
	}
	decl, ok := c.keyDecl[strings.TrimSpace(key)]
	return decl, ok
}

// IndexedKeys returns the keys with a direct status, sorted.
func (c *Catalog) IndexedKeys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.keyStatus))
	for key := range c.keyStatus {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.features)
}

func compactKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
