package accountmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore persists mappings and settings in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps a database prepared by InitDB.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Open initializes the database at path and returns a store over it.
func Open(path string) (*SQLiteStore, error) {
	db, err := InitDB(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db), nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, identifier string) (string, bool, error) {
	var accountID string
	err := s.db.QueryRowContext(ctx,
		"SELECT account_id FROM account_mappings WHERE identifier = ?", identifier,
	).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get mapping %q: %w", identifier, err)
	}
	return accountID, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, identifier, accountID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account_mappings (identifier, account_id, updated_at) VALUES (?,?,?)
		ON CONFLICT(identifier) DO UPDATE SET account_id = excluded.account_id, updated_at = excluded.updated_at`,
		identifier, accountID, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set mapping %q: %w", identifier, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, identifier string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM account_mappings WHERE identifier = ?", identifier); err != nil {
		return fmt.Errorf("delete mapping %q: %w", identifier, err)
	}
	return nil
}

// All returns mappings sorted by identifier.
func (s *SQLiteStore) All(ctx context.Context) ([]Mapping, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT identifier, account_id, updated_at FROM account_mappings ORDER BY identifier",
	)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var (
			m       Mapping
			updated string
		)
		if err := rows.Scan(&m.Identifier, &m.AccountID, &updated); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			m.UpdatedAt = t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?,?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}
