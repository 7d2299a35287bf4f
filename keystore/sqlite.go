package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var _ Store = (*SQLite)(nil)

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path, enables WAL mode
// and creates the keys table.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("keystore: open database: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		`CREATE TABLE IF NOT EXISTS keys (
			id TEXT PRIMARY KEY,
			secret TEXT NOT NULL,
			realm TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			db.Close()
			return nil, fmt.Errorf("keystore: init database: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Put adds or replaces a key.
func (s *SQLite) Put(ctx context.Context, k Key) error {
	if err := k.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keys (id, secret, realm) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET secret = excluded.secret, realm = excluded.realm`,
		k.ID, k.Secret, k.Realm)
	if err != nil {
		return fmt.Errorf("keystore: put %s: %w", k.ID, err)
	}

	return nil
}

// Delete removes a key. Deleting an unknown key is a no-op.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM keys WHERE id = ?", id); err != nil {
		return fmt.Errorf("keystore: delete %s: %w", id, err)
	}

	return nil
}

// Key returns the full key record for id.
func (s *SQLite) Key(ctx context.Context, id string) (Key, error) {
	k := Key{ID: id}

	err := s.db.QueryRowContext(ctx, "SELECT secret, realm FROM keys WHERE id = ?", id).Scan(&k.Secret, &k.Realm)
	if errors.Is(err, sql.ErrNoRows) {
		return Key{}, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}

	if err != nil {
		return Key{}, fmt.Errorf("keystore: lookup %s: %w", id, err)
	}

	return k, nil
}

// Secret implements Store.
func (s *SQLite) Secret(ctx context.Context, id string) (string, error) {
	k, err := s.Key(ctx, id)
	if err != nil {
		return "", err
	}

	return k.Secret, nil
}

// Import stores every key in a single transaction.
func (s *SQLite) Import(ctx context.Context, keys []Key) error {
	for _, k := range keys {
		if err := k.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("keystore: begin: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO keys (id, secret, realm) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET secret = excluded.secret, realm = excluded.realm`,
			k.ID, k.Secret, k.Realm); err != nil {
			return fmt.Errorf("keystore: import %s: %w", k.ID, err)
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
