package storage

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/golang-migrate/migrate/v4/database"
)

// sqliteMigrateDriver adapts an already-open *sql.DB (modernc.org/sqlite
// has no golang-migrate database driver of its own, unlike the cgo
// mattn/go-sqlite3 binding golang-migrate ships support for) to
// golang-migrate's database.Driver interface, so migrations can run
// against the same *sql.DB connection the rest of this package uses.
type sqliteMigrateDriver struct {
	db *sql.DB
}

var _ database.Driver = (*sqliteMigrateDriver)(nil)

const migrationVersionTable = "schema_migrations"

func (d *sqliteMigrateDriver) open() (*sqliteMigrateDriver, error) {
	_, err := d.db.Exec(fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (version INTEGER NOT NULL, dirty BOOLEAN NOT NULL)`,
		migrationVersionTable,
	))
	if err != nil {
		return nil, fmt.Errorf("storage: init migration version table: %w", err)
	}
	return d, nil
}

// Open implements database.Driver. It is unused here: the instance is
// always constructed directly against a live *sql.DB via
// migrate.NewWithInstance, never via a URL.
func (d *sqliteMigrateDriver) Open(url string) (database.Driver, error) {
	return nil, fmt.Errorf("storage: Open by URL is not supported, use OpenSQLStore")
}

// Close implements database.Driver. The underlying *sql.DB is owned
// by SQLStore, so this is a no-op.
func (d *sqliteMigrateDriver) Close() error {
	return nil
}

// Lock implements database.Driver. modernc.org/sqlite connections in
// this store are capped at one (see OpenSQLStore), so there is no
// concurrent migrator to lock out.
func (d *sqliteMigrateDriver) Lock() error {
	return nil
}

// Unlock implements database.Driver.
func (d *sqliteMigrateDriver) Unlock() error {
	return nil
}

// Run implements database.Driver, executing a single migration's SQL.
func (d *sqliteMigrateDriver) Run(migration io.Reader) error {
	body, err := io.ReadAll(migration)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(string(body)); err != nil {
		return fmt.Errorf("storage: run migration: %w", err)
	}
	return nil
}

// SetVersion implements database.Driver.
func (d *sqliteMigrateDriver) SetVersion(version int, dirty bool) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s`, migrationVersionTable)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		fmt.Sprintf(`INSERT INTO %s (version, dirty) VALUES (?, ?)`, migrationVersionTable),
		version, dirty,
	); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Version implements database.Driver.
func (d *sqliteMigrateDriver) Version() (int, bool, error) {
	var version int
	var dirty bool
	row := d.db.QueryRow(fmt.Sprintf(`SELECT version, dirty FROM %s LIMIT 1`, migrationVersionTable))
	if err := row.Scan(&version, &dirty); err != nil {
		if err == sql.ErrNoRows {
			return database.NilVersion, false, nil
		}
		return database.NilVersion, false, err
	}
	return version, dirty, nil
}

// Drop implements database.Driver.
func (d *sqliteMigrateDriver) Drop() error {
	_, err := d.db.Exec(`DROP TABLE IF EXISTS kv`)
	return err
}
