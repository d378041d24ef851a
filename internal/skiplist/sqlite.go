package skiplist

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS skip_entries (
	id         TEXT PRIMARY KEY,
	pattern    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_skip_entries_pattern ON skip_entries(pattern);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, entry Entry) error {
	if entry.Kind != KindDomain && entry.Kind != KindEmail {
		return eris.Errorf("sqlite: invalid entry kind %q", entry.Kind)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skip_entries (id, pattern, kind, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Pattern, entry.Kind, entry.Reason, entry.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert skip entry")
}

func (s *SQLiteStore) Load(ctx context.Context) (List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pattern, kind, reason, created_at FROM skip_entries ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query skip entries")
	}
	defer rows.Close()

	var list List
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Pattern, &e.Kind, &e.Reason, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan skip entry")
		}
		list = append(list, e)
	}
	return list, eris.Wrap(rows.Err(), "sqlite: iterate skip entries")
}
