package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: BASELINE_[SECTION]_[KEY] (e.g., BASELINE_SCAN_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvString(&cfg.Scan.Root, "BASELINE_SCAN_ROOT")
	setEnvInt(&cfg.Scan.Workers, "BASELINE_SCAN_WORKERS")
	setEnvFloat64(&cfg.Scan.MaxFilesPerSecond, "BASELINE_SCAN_MAX_FILES_PER_SECOND")

	setEnvBool(&cfg.Parse.TolerateErrors, "BASELINE_PARSE_TOLERATE_ERRORS")
	setEnvString(&cfg.Script.Mode, "BASELINE_SCRIPT_MODE")

	// Catalog
	setEnvString(&cfg.Catalog.Path, "BASELINE_CATALOG_PATH")
	setEnvString(&cfg.Catalog.Format, "BASELINE_CATALOG_FORMAT")
	setEnvString(&cfg.Catalog.AsOf, "BASELINE_CATALOG_AS_OF")

	setEnvString(&cfg.Output.Format, "BASELINE_OUTPUT_FORMAT")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "BASELINE_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "BASELINE_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}
