package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"baseline/internal/core/errors"
)

// rawStatus mirrors the status block of web-features data.
type rawStatus struct {
	Baseline         interface{}          `json:"baseline" yaml:"baseline"`
	BaselineLowDate  string               `json:"baseline_low_date" yaml:"baseline_low_date"`
	BaselineHighDate string               `json:"baseline_high_date" yaml:"baseline_high_date"`
	Support          map[string]string    `json:"support" yaml:"support"`
	ByCompatKey      map[string]rawStatus `json:"by_compat_key" yaml:"by_compat_key"`
}

type rawFeature struct {
	Kind           string     `json:"kind" yaml:"kind"`
	Name           string     `json:"name" yaml:"name"`
	CompatFeatures []string   `json:"compat_features" yaml:"compat_features"`
	Status         *rawStatus `json:"status" yaml:"status"`
}

func (s rawStatus) declaration() (Declaration, error) {
	baseline, err := baselineValue(s.Baseline)
	if err != nil {
		return Declaration{}, err
	}
	return Declaration{
		Baseline: baseline,
		LowDate:  s.BaselineLowDate,
		HighDate: s.BaselineHighDate,
		Support:  s.Support,
	}, nil
}

// collector accumulates features in source order.
type collector struct {
	features []FeatureSpec
	keys     map[string]Declaration
}

func newCollector() *collector {
	return &collector{keys: make(map[string]Declaration)}
}

func (c *collector) add(id string, raw rawFeature) error {
	// Moved and split entries are redirects without data of their own.
	if raw.Kind != "" && raw.Kind != "feature" {
		return nil
	}
	spec := FeatureSpec{ID: id, Name: raw.Name, CompatKeys: raw.CompatFeatures}
	if raw.Status != nil {
		decl, err := raw.Status.declaration()
		if err != nil {
			return fmt.Errorf("feature %q: %w", id, err)
		}
		spec.Status = &decl
		for key, keyStatus := range raw.Status.ByCompatKey {
			keyDecl, err := keyStatus.declaration()
			if err != nil {
				return fmt.Errorf("feature %q key %q: %w", id, key, err)
			}
			if _, seen := c.keys[key]; !seen {
				c.keys[key] = keyDecl
			}
		}
	}
	c.features = append(c.features, spec)
	return nil
}

func (c *collector) build(asOf time.Time) *Catalog {
	return New(asOf, c.features, c.keys)
}

// LoadJSONFile loads a web-features data.json file.
func LoadJSONFile(path string, asOf time.Time) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeCatalogError, "open catalog"), errors.CtxPath, path)
	}
	defer f.Close()

	cat, err := LoadJSON(f, asOf)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return cat, nil
}

// LoadJSON decodes web-features JSON, keeping the document order of the
// "features" object so catalog iteration order is stable.
func LoadJSON(r io.Reader, asOf time.Time) (*Catalog, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, errors.Wrap(err, errors.CodeCatalogError, "decode catalog")
	}

	col := newCollector()
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeCatalogError, "decode catalog")
		}
		if key != "features" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, errors.Wrap(err, errors.CodeCatalogError, "decode catalog section "+key)
			}
			continue
		}
		if err := decodeFeatures(dec, col); err != nil {
			return nil, errors.Wrap(err, errors.CodeCatalogError, "decode catalog features")
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, errors.Wrap(err, errors.CodeCatalogError, "decode catalog")
	}
	return col.build(asOf), nil
}

func decodeFeatures(dec *json.Decoder, col *collector) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		id, err := readKey(dec)
		if err != nil {
			return err
		}
		var raw rawFeature
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("feature %q: %w", id, err)
		}
		if err := col.add(id, raw); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
