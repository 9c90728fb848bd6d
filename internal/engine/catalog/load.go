package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"baseline/internal/core/errors"
)

const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

// Load reads a catalog in the given format. It is called once per process;
// the returned catalog is shared read-only by every scan worker.
func Load(ctx context.Context, path, format string, asOf time.Time) (*Catalog, error) {
	if path == "" {
		return nil, errors.New(errors.CodeValidationError, "catalog path is required")
	}

	start := time.Now()
	var (
		cat *Catalog
		err error
	)
	switch format {
	case FormatJSON, "":
		cat, err = LoadJSONFile(path, asOf)
	case FormatYAML:
		cat, err = LoadYAML(path, asOf)
	case FormatSQLite:
		cat, err = LoadSQLite(ctx, path, asOf)
	default:
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported catalog format %q", format))
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("catalog loaded",
		"path", path,
		"format", format,
		"features", cat.Len(),
		"indexed_keys", len(cat.keyStatus),
		"as_of", cat.AsOf().Format(dateLayout),
		"duration", time.Since(start),
	)
	return cat, nil
}
