package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// connParams are applied by the driver to every new connection.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// migration upgrades a database whose user_version is below version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order on databases whose user_version is lower. New
// databases get the same objects from schema.sql; their migrations must be
// no-ops in effect.
var migrations = []migration{
	{
		version: 1,
		name:    "index split times by control",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_split_times_control ON split_times(control_code)`,
	},
	{
		// SQLite cannot change a UNIQUE constraint in place, so the table is
		// rebuilt. person_results keeps referencing persons by name.
		version: 2,
		name:    "key persons on their IOF id",
		stmt: `
			PRAGMA foreign_keys = OFF;
			CREATE TABLE persons_v2 (
				id         INTEGER PRIMARY KEY,
				family_key TEXT NOT NULL,
				given_key  TEXT NOT NULL,
				birth_date TEXT NOT NULL DEFAULT '',
				family     TEXT NOT NULL DEFAULT '',
				given      TEXT NOT NULL DEFAULT '',
				sex        TEXT NOT NULL DEFAULT '',
				iof_id     TEXT NOT NULL DEFAULT '',
				UNIQUE(family_key, given_key, birth_date, iof_id)
			);
			INSERT INTO persons_v2 (id, family_key, given_key, birth_date, family, given, sex, iof_id)
				SELECT id, family_key, given_key, birth_date, family, given, sex, iof_id FROM persons;
			DROP TABLE persons;
			ALTER TABLE persons_v2 RENAME TO persons;
			PRAGMA foreign_keys = ON;
		`,
	},
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Store is the results database: imported result lists down to split times,
// plus the log of import runs.
type Store struct {
	db *sql.DB
}

// Open creates or opens the results database at path and brings its schema
// up to date. Opening an up-to-date database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection serialises writers; imports are sequential anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Tx groups the writes of one import. Obtain it through Store.WithTx.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// migrate creates missing tables and runs the migrations newer than the
// database's user_version.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", m.version, m.name, err)
		}
	}

	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
