package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"baseline/internal/core/errors"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists a catalog in SQLite so large catalogs load without
// re-decoding the upstream JSON.
type Store struct {
	path string
	db   *sql.DB
}

func OpenStore(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("catalog store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("catalog store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite catalog %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite catalog %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save replaces the stored catalog with cat. Statuses are stored as
// declared, so a later Load can normalize them against a later date.
func (s *Store) Save(ctx context.Context, cat *Catalog) error {
	return s.withRetry("save catalog", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := saveTx(ctx, tx, cat); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func saveTx(ctx context.Context, tx *sql.Tx, cat *Catalog) error {
	for _, stmt := range []string{
		`DELETE FROM key_support`, `DELETE FROM key_status`,
		`DELETE FROM feature_support`, `DELETE FROM feature_keys`, `DELETE FROM features`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	for _, f := range cat.Features() {
		var decl Declaration
		hasStatus := 0
		if f.Declared != nil {
			hasStatus = 1
			decl = *f.Declared
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO features (id, position, name, has_status, baseline, low_date, high_date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Order, f.Name, hasStatus, decl.Baseline, decl.LowDate, decl.HighDate,
		); err != nil {
			return fmt.Errorf("insert feature %q: %w", f.ID, err)
		}
		for i, key := range f.CompatKeys {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO feature_keys (feature_id, position, compat_key) VALUES (?, ?, ?)`,
				f.ID, i, key,
			); err != nil {
				return fmt.Errorf("insert compat key %q: %w", key, err)
			}
		}
		for _, engine := range sortedEngines(decl.Support) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO feature_support (feature_id, engine, version) VALUES (?, ?, ?)`,
				f.ID, engine, decl.Support[engine],
			); err != nil {
				return fmt.Errorf("insert support %q/%q: %w", f.ID, engine, err)
			}
		}
	}

	for _, key := range cat.IndexedKeys() {
		decl, _ := cat.DeclarationOf(key)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO key_status (compat_key, baseline, low_date, high_date) VALUES (?, ?, ?, ?)`,
			key, decl.Baseline, decl.LowDate, decl.HighDate,
		); err != nil {
			return fmt.Errorf("insert key status %q: %w", key, err)
		}
		for _, engine := range sortedEngines(decl.Support) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO key_support (compat_key, engine, version) VALUES (?, ?, ?)`,
				key, engine, decl.Support[engine],
			); err != nil {
				return fmt.Errorf("insert key support %q/%q: %w", key, engine, err)
			}
		}
	}
	return nil
}

// Load reads the stored catalog, re-checking statuses against asOf.
func (s *Store) Load(ctx context.Context, asOf time.Time) (*Catalog, error) {
	featureSupport, err := s.loadSupport(ctx, `SELECT feature_id, engine, version FROM feature_support`)
	if err != nil {
		return nil, err
	}
	keySupport, err := s.loadSupport(ctx, `SELECT compat_key, engine, version FROM key_support`)
	if err != nil {
		return nil, err
	}
	compatKeys, err := s.loadCompatKeys(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, has_status, baseline, low_date, high_date FROM features ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	specs := make([]FeatureSpec, 0)
	for rows.Next() {
		var (
			spec      FeatureSpec
			hasStatus int
			decl      Declaration
		)
		if err := rows.Scan(&spec.ID, &spec.Name, &hasStatus, &decl.Baseline, &decl.LowDate, &decl.HighDate); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		spec.CompatKeys = compatKeys[spec.ID]
		if hasStatus != 0 {
			decl.Support = featureSupport[spec.ID]
			spec.Status = &decl
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	keyRows, err := s.db.QueryContext(ctx, `SELECT compat_key, baseline, low_date, high_date FROM key_status`)
	if err != nil {
		return nil, fmt.Errorf("query key status: %w", err)
	}
	defer keyRows.Close()

	keys := make(map[string]Declaration)
	for keyRows.Next() {
		var (
			key  string
			decl Declaration
		)
		if err := keyRows.Scan(&key, &decl.Baseline, &decl.LowDate, &decl.HighDate); err != nil {
			return nil, fmt.Errorf("scan key status row: %w", err)
		}
		decl.Support = keySupport[key]
		keys[key] = decl
	}
	if err := keyRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key status rows: %w", err)
	}

	return New(asOf, specs, keys), nil
}

func (s *Store) loadCompatKeys(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT feature_id, compat_key FROM feature_keys ORDER BY feature_id ASC, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query compat keys: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scan compat key row: %w", err)
		}
		out[id] = append(out[id], key)
	}
	return out, rows.Err()
}

func (s *Store) loadSupport(ctx context.Context, query string) (map[string]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query support: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]string)
	for rows.Next() {
		var owner, engine, version string
		if err := rows.Scan(&owner, &engine, &version); err != nil {
			return nil, fmt.Errorf("scan support row: %w", err)
		}
		if out[owner] == nil {
			out[owner] = make(map[string]string)
		}
		out[owner][engine] = version
	}
	return out, rows.Err()
}

// LoadSQLite opens path and loads the catalog stored there.
func LoadSQLite(ctx context.Context, path string, asOf time.Time) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeCatalogError, "stat catalog store"), errors.CtxPath, path)
	}
	store, err := OpenStore(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeCatalogError, "open catalog store"), errors.CtxPath, path)
	}
	defer store.Close()

	cat, err := store.Load(ctx, asOf)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeCatalogError, "load catalog store"), errors.CtxPath, path)
	}
	return cat, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func sortedEngines(support map[string]string) []string {
	engines := make([]string, 0, len(support))
	for engine := range support {
		engines = append(engines, engine)
	}
	sort.Strings(engines)
	return engines
}
