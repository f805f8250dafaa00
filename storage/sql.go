package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLStore is a Store backed by an embedded, pure-Go SQLite engine
// (modernc.org/sqlite, no cgo), schema-migrated with golang-migrate.
// It exists as the alternative, durable persistence backend the
// project this code was grown from offers alongside its bucket-based
// default (there: Postgres/SQLite behind channeldb's kvdb
// abstraction; here: the in-memory MemStore as the default, with bbolt
// and this SQL store as the durable alternatives). A single KV-shaped
// table is enough, since none of the
// adjudicator's records benefit from a relational schema.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens (creating and migrating if needed) a SQLite
// database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers.

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("storage: load embedded migrations: %w", err)
	}

	driver, err := (&sqliteMigrateDriver{db: db}).open()
	if err != nil {
		return fmt.Errorf("storage: init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("storage: construct migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("storage: apply migrations: %w", err)
	}
	return nil
}

// Put implements Store.
func (s *SQLStore) Put(bucket, key, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(bucket, key) DO UPDATE SET value = excluded.value`,
		bucket, key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: put: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLStore) Get(bucket, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(
		`SELECT value FROM kv WHERE bucket = ? AND key = ?`, bucket, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get: %w", err)
	}
	return value, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(bucket, key []byte) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE bucket = ? AND key = ?`, bucket, key)
	if err != nil {
		return fmt.Errorf("storage: delete: %w", err)
	}
	return nil
}

// ForEach implements Store.
func (s *SQLStore) ForEach(bucket []byte, fn func(key, value []byte) error) error {
	rows, err := s.db.Query(`SELECT key, value FROM kv WHERE bucket = ?`, bucket)
	if err != nil {
		return fmt.Errorf("storage: for each: %w", err)
	}
	defer rows.Close()

	type kvPair struct{ key, value []byte }
	var pairs []kvPair
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("storage: scan row: %w", err)
		}
		pairs = append(pairs, kvPair{k, v})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range pairs {
		if err := fn(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
