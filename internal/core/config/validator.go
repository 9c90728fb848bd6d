package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a fully defaulted configuration.
func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateScan(cfg); err != nil {
		return err
	}
	if err := validateExclude(cfg); err != nil {
		return err
	}
	if err := validateScript(cfg); err != nil {
		return err
	}
	if err := validateCatalog(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, pattern := range cfg.Scan.Include {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("scan.include[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("scan.include[%d] is not a valid pattern %q: %w", i, pattern, err)
		}
	}
	if cfg.Scan.MaxFilesPerSecond < 0 {
		return fmt.Errorf("scan.max_files_per_second must be >= 0, got %v", cfg.Scan.MaxFilesPerSecond)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, p := range append(append([]string(nil), cfg.Exclude.Dirs...), cfg.Exclude.Files...) {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}
	return nil
}

func validateScript(cfg *Config) error {
	switch cfg.Script.Mode {
	case ScriptModeHeuristic, ScriptModeSyntax:
		return nil
	default:
		return fmt.Errorf("script.mode must be one of: heuristic, syntax")
	}
}

func validateCatalog(cfg *Config) error {
	switch cfg.Catalog.Format {
	case "", CatalogFormatJSON, CatalogFormatYAML, CatalogFormatSQLite:
	default:
		return fmt.Errorf("catalog.format must be one of: json, yaml, sqlite")
	}
	if _, err := cfg.Catalog.CatalogAsOf(); err != nil {
		return err
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case OutputFormatText, OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("output.format must be one of: text, json")
	}
}
