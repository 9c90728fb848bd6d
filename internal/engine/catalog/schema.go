package catalog

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 1

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS features (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  has_status INTEGER NOT NULL DEFAULT 0,
  baseline TEXT NOT NULL DEFAULT '',
  low_date TEXT NOT NULL DEFAULT '',
  high_date TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_features_position ON features(position);
CREATE TABLE IF NOT EXISTS feature_keys (
  feature_id TEXT NOT NULL REFERENCES features(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  compat_key TEXT NOT NULL,
  PRIMARY KEY (feature_id, position)
);
CREATE INDEX IF NOT EXISTS idx_feature_keys_key ON feature_keys(compat_key);
CREATE TABLE IF NOT EXISTS feature_support (
  feature_id TEXT NOT NULL REFERENCES features(id) ON DELETE CASCADE,
  engine TEXT NOT NULL,
  version TEXT NOT NULL,
  PRIMARY KEY (feature_id, engine)
);
CREATE TABLE IF NOT EXISTS key_status (
  compat_key TEXT PRIMARY KEY,
  baseline TEXT NOT NULL DEFAULT '',
  low_date TEXT NOT NULL DEFAULT '',
  high_date TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS key_support (
  compat_key TEXT NOT NULL REFERENCES key_status(compat_key) ON DELETE CASCADE,
  engine TEXT NOT NULL,
  version TEXT NOT NULL,
  PRIMARY KEY (compat_key, engine)
);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
