// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go driver
)

// SqliteStore persists bookmarks in a single-table SQLite database.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqliteStore opens (or creates) the bookmark database at path.
func OpenSqliteStore(path string) (*SqliteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("progress: open failed: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS bookmarks (
		key     TEXT PRIMARY KEY,
		seconds REAL NOT NULL,
		updated INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("progress: schema: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Get(ctx context.Context, mediaID string) (float64, error) {
	var seconds float64
	err := s.db.QueryRowContext(ctx,
		`SELECT seconds FROM bookmarks WHERE key = ?`, bookmarkKey(mediaID)).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return seconds, nil
}

func (s *SqliteStore) Put(ctx context.Context, mediaID string, seconds float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (key, seconds, updated) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET seconds = excluded.seconds, updated = excluded.updated`,
		bookmarkKey(mediaID), seconds, time.Now().Unix())
	return err
}

func (s *SqliteStore) Delete(ctx context.Context, mediaID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE key = ?`, bookmarkKey(mediaID))
	return err
}

func (s *SqliteStore) Close() error { return s.db.Close() }
