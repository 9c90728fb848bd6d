package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"baseline/internal/core/errors"

	"gopkg.in/yaml.v3"
)

// LoadYAML loads either a directory of per-feature YAML files (web-features
// source layout, "<id>.yml" plus the generated "<id>.yml.dist") or a single
// YAML document with a top-level "features" mapping.
func LoadYAML(path string, asOf time.Time) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeCatalogError, "stat catalog"), errors.CtxPath, path)
	}

	var col *collector
	if info.IsDir() {
		col, err = loadYAMLDir(path)
	} else {
		col, err = loadYAMLDocument(path)
	}
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeCatalogError, "decode yaml catalog"), errors.CtxPath, path)
	}
	return col.build(asOf), nil
}

type yamlSource struct {
	source string
	dist   string
}

func loadYAMLDir(dir string) (*collector, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]*yamlSource)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		id, dist, ok := yamlFeatureID(name)
		if !ok {
			continue
		}
		src := sources[id]
		if src == nil {
			src = &yamlSource{}
			sources[id] = src
		}
		if dist {
			src.dist = filepath.Join(dir, name)
		} else {
			src.source = filepath.Join(dir, name)
		}
	}

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	col := newCollector()
	for _, id := range ids {
		src := sources[id]
		var merged rawFeature
		if src.source != "" {
			if err := decodeYAMLFile(src.source, &merged); err != nil {
				return nil, err
			}
		}
		if src.dist != "" {
			var dist rawFeature
			if err := decodeYAMLFile(src.dist, &dist); err != nil {
				return nil, err
			}
			mergeFeature(&merged, dist)
		}
		if err := col.add(id, merged); err != nil {
			return nil, err
		}
	}
	return col, nil
}

// yamlFeatureID maps "grid.yml" -> ("grid", false) and "grid.yml.dist" -> ("grid", true).
func yamlFeatureID(name string) (string, bool, bool) {
	dist := false
	if strings.HasSuffix(name, ".dist") {
		dist = true
		name = strings.TrimSuffix(name, ".dist")
	}
	for _, ext := range []string{".yml", ".yaml"} {
		if strings.HasSuffix(name, ext) {
			id := strings.TrimSuffix(name, ext)
			return id, dist, id != ""
		}
	}
	return "", false, false
}

func mergeFeature(dst *rawFeature, dist rawFeature) {
	if dist.Kind != "" {
		dst.Kind = dist.Kind
	}
	if dist.Name != "" {
		dst.Name = dist.Name
	}
	if len(dist.CompatFeatures) > 0 {
		dst.CompatFeatures = dist.CompatFeatures
	}
	if dist.Status != nil {
		dst.Status = dist.Status
	}
}

func decodeYAMLFile(path string, out *rawFeature) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func loadYAMLDocument(path string) (*collector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return newCollector(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at document root")
	}

	col := newCollector()
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "features" {
			continue
		}
		features := root.Content[i+1]
		if features.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("features must be a mapping")
		}
		// Mapping content alternates key and value nodes in document order.
		for j := 0; j+1 < len(features.Content); j += 2 {
			id := features.Content[j].Value
			var raw rawFeature
			if err := features.Content[j+1].Decode(&raw); err != nil {
				return nil, fmt.Errorf("feature %q: %w", id, err)
			}
			if err := col.add(id, raw); err != nil {
				return nil, err
			}
		}
	}
	return col, nil
}
