package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a single-table SQLite database.
type SQLiteStore struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.conn.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

func (s *SQLiteStore) Delete(key string) error {
	_, err := s.conn.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.conn.Select(&keys,
		"SELECT key FROM kv WHERE key LIKE ? ORDER BY key",
		prefix+"%",
	)
	return keys, err
}
