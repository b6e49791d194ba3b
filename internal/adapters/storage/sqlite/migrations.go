package sqlite

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "interests: scored keyword per child",
		SQL: `
CREATE TABLE interests (
    id           TEXT PRIMARY KEY,
    child_id     TEXT NOT NULL,
    keyword      TEXT NOT NULL,
    score        REAL NOT NULL CHECK (score >= 0 AND score <= 100),
    last_updated INTEGER NOT NULL,
    created_at   INTEGER NOT NULL,
    version      INTEGER NOT NULL DEFAULT 1,

    UNIQUE (child_id, keyword COLLATE NOCASE)
);

CREATE INDEX idx_interests_child_score ON interests(child_id, score DESC);
CREATE INDEX idx_interests_stale       ON interests(last_updated, score);
`,
	},
	{
		Version:     2,
		Description: "analytics: append-only keyword extraction log",
		SQL: `
CREATE TABLE analytics (
    id              TEXT PRIMARY KEY,
    child_id        TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    keywords        TEXT NOT NULL,
    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_analytics_child      ON analytics(child_id);
CREATE INDEX idx_analytics_created_at ON analytics(created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
