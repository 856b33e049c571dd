/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence interface of the system in one store:

    catalog.BookStore      books + guarded quantity updates
    catalog.CategoryStore  categories
    members.UserStore      users
    lending.Store/TxStore  loans + transactions

  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

CONSTRAINTS:
  The schema repeats the engine's invariants as check constraints so that
  a bug above this layer cannot corrupt stored state:
  - books.quantity >= 0
  - loans.due_date > loan_date
  - loans.return_date IS NULL OR return_date >= loan_date
  - loans.renewal_count BETWEEN 0 AND 3
  - loans.fine_amount >= 0
  Uniqueness (isbn, email, category name) is constraint-backed and mapped
  to the typed duplicate errors.

CONCURRENCY:
  Reservation uses a guarded UPDATE (quantity + delta >= 0 in the WHERE
  clause), so concurrent reservations serialize on the book row and the
  quantity can never go negative. SQLite is opened in WAL mode with a
  busy timeout; readers don't block and writers queue.

TRANSACTIONS:
  WithTx hands the callback a Store bound to an open transaction. The
  same query code runs against *sqlx.DB and *sqlx.Tx via sqlx.ExtContext.

SEE ALSO:
  - lending/store.go: interface definitions
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // goqu dialect
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database driver

	"github.com/warp/library-engine/lending"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sqlx.DB
	// ext is the db outside transactions and the tx inside WithTx.
	ext  sqlx.ExtContext
	inTx bool
}

// Interface checks.
var _ lending.TxStore = (*Store)(nil)

// New creates a SQLite store at the given path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each sqlite connection gets its own in-memory database; keep
		// the pool at one connection so every statement sees the schema.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, ext: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Debug("sqlite store ready", "path", dbPath)

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Users (loan parties)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Categories
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Books: quantity counts AVAILABLE copies and can never go negative
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		isbn TEXT NOT NULL UNIQUE,
		publication_year INTEGER NOT NULL DEFAULT 0,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Loans: historical records, never deleted by the lifecycle engine.
	-- Check constraints mirror the engine's invariants as a last line of
	-- defense; the renewal cap matches the default policy.
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		book_id TEXT NOT NULL REFERENCES books(id),
		loan_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		return_date TEXT,
		is_returned BOOLEAN NOT NULL DEFAULT FALSE,
		renewal_count INTEGER NOT NULL DEFAULT 0,
		fine_amount INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (due_date > loan_date),
		CHECK (return_date IS NULL OR return_date >= loan_date),
		CHECK (renewal_count >= 0),
		CHECK (renewal_count <= 3),
		CHECK (fine_amount >= 0),
		CHECK (is_returned = (return_date IS NOT NULL))
	);

	-- Composite indexes for the frequent loan queries
	CREATE INDEX IF NOT EXISTS idx_loans_user_returned
		ON loans(user_id, is_returned);
	CREATE INDEX IF NOT EXISTS idx_loans_book_returned
		ON loans(book_id, is_returned);
	CREATE INDEX IF NOT EXISTS idx_loans_due_date_returned
		ON loans(due_date, is_returned);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS (lending.TxStore interface)
// =============================================================================

// WithTx executes fn within a transaction. The Store handed to fn runs
// all statements on that transaction; fn returning an error rolls
// everything back, including quantity reservations.
func (s *Store) WithTx(ctx context.Context, fn func(lending.Store) error) error {
	if s.inTx {
		// Already transaction-bound: run in the enclosing transaction.
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txStore := &Store{db: s.db, ext: tx, inTx: true}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

// Times are stored as UTC RFC3339 text so that the schema's lexical
// comparisons (due_date > loan_date) match time ordering.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed stored time %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func isUniqueConstraintError(err error, index string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), index)
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
