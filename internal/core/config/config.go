package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFile = "baseline.toml"

type Config struct {
	Version       int                 `toml:"version"`
	Scan          Scan                `toml:"scan"`
	Exclude       Exclude             `toml:"exclude"`
	Parse         Parse               `toml:"parse"`
	Script        Script              `toml:"script"`
	Catalog       Catalog             `toml:"catalog"`
	Languages     map[string]Language `toml:"languages"`
	Output        Output              `toml:"output"`
	Observability Observability       `toml:"observability"`
}

type Scan struct {
	Root              string   `toml:"root"`
	Include           []string `toml:"include"`
	Workers           int      `toml:"workers"`
	MaxFilesPerSecond float64  `toml:"max_files_per_second"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Parse struct {
	// TolerateErrors keeps script units with syntax errors in syntax mode,
	// skipping only the ERROR subtrees. Markup and stylesheets always recover.
	TolerateErrors bool `toml:"tolerate_errors"`
}

type Script struct {
	Mode string `toml:"mode"`
}

type Catalog struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	AsOf   string `toml:"as_of"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

const (
	ScriptModeHeuristic = "heuristic"
	ScriptModeSyntax    = "syntax"

	CatalogFormatJSON   = "json"
	CatalogFormatYAML   = "yaml"
	CatalogFormatSQLite = "sqlite"

	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

var (
	DefaultInclude     = []string{"**/*.{html,css,js,jsx,ts,tsx}"}
	DefaultExcludeDirs = []string{"node_modules", "dist", ".git"}
)

// Default returns a configuration with env overrides and every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	resolveRelativePaths(&cfg, filepath.Dir(path))
	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Scan.Root) == "" {
		cfg.Scan.Root = "."
	}
	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = append([]string(nil), DefaultInclude...)
	}
	// Zero means one worker per CPU; resolved by the scanner.
	if cfg.Scan.Workers < 0 {
		cfg.Scan.Workers = 0
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = append([]string(nil), DefaultExcludeDirs...)
	}

	cfg.Script.Mode = strings.ToLower(strings.TrimSpace(cfg.Script.Mode))
	if cfg.Script.Mode == "" {
		cfg.Script.Mode = ScriptModeHeuristic
	}

	cfg.Catalog.Format = strings.ToLower(strings.TrimSpace(cfg.Catalog.Format))
	if cfg.Catalog.Format == "" && cfg.Catalog.Path != "" {
		cfg.Catalog.Format = DetectCatalogFormat(cfg.Catalog.Path)
	}

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		cfg.Output.Format = OutputFormatText
	}
}

// resolveRelativePaths anchors the paths written in the config file to the
// file's directory. Values from the environment, defaults and flags stay
// relative to the working directory.
func resolveRelativePaths(cfg *Config, baseDir string) {
	if baseDir == "" || baseDir == "." {
		return
	}
	for _, p := range []*string{&cfg.Scan.Root, &cfg.Catalog.Path, &cfg.Output.Path} {
		if strings.TrimSpace(*p) != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}

// DetectCatalogFormat infers the catalog format from a path. Directories are YAML sources.
func DetectCatalogFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return CatalogFormatSQLite
	case ".yml", ".yaml":
		return CatalogFormatYAML
	case ".json":
		return CatalogFormatJSON
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return CatalogFormatYAML
	}
	return CatalogFormatJSON
}

// CatalogAsOf parses catalog.as_of. The zero time means "use load time".
func (c Catalog) CatalogAsOf() (time.Time, error) {
	raw := strings.TrimSpace(c.AsOf)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("catalog.as_of must be RFC3339 or YYYY-MM-DD, got %q", c.AsOf)
	}
	return ts.UTC(), nil
}
