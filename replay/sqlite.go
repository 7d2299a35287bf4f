package replay

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var _ Guard = (*SQLite)(nil)

// SQLite is a Guard backed by a seen_nonces table, so replays are
// rejected across restarts and between processes sharing the file.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLite opens or creates the database at path. A ttl of zero means
// DefaultTTL.
func OpenSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("replay: open database: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		`CREATE TABLE IF NOT EXISTS seen_nonces (
			key_id TEXT NOT NULL,
			nonce TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (key_id, nonce)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_seen_nonces_expires_at ON seen_nonces(expires_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			db.Close()
			return nil, fmt.Errorf("replay: init database: %w", err)
		}
	}

	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

// Remember implements Guard.
func (s *SQLite) Remember(ctx context.Context, keyID, nonce string, at time.Time) error {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replay: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM seen_nonces WHERE expires_at <= ?", now.UnixNano()); err != nil {
		return fmt.Errorf("replay: cleanup: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO seen_nonces (key_id, nonce, expires_at) VALUES (?, ?, ?)",
		keyID, nonce, expiry(now, at, s.ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("replay: save nonce: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replay: save nonce: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replay: commit: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", ErrReplayed, nonce)
	}

	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
