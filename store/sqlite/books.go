package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/warp/library-engine/catalog"
)

// =============================================================================
// BOOK STORE (catalog.BookStore interface)
// =============================================================================

type bookRow struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	Author          string `db:"author"`
	ISBN            string `db:"isbn"`
	PublicationYear int    `db:"publication_year"`
	Quantity        int    `db:"quantity"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
}

func (r bookRow) toBook() (*catalog.Book, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &catalog.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
		Quantity:        r.Quantity,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// CreateBook inserts a catalog entry. Maps the isbn uniqueness
// constraint to catalog.ErrDuplicateISBN.
func (s *Store) CreateBook(ctx context.Context, book *catalog.Book) error {
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	query := `
		INSERT INTO books (id, title, author, isbn, publication_year, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.ext.ExecContext(ctx, query,
		book.ID, book.Title, book.Author, book.ISBN,
		book.PublicationYear, book.Quantity,
		fmtTime(book.CreatedAt), fmtTime(book.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err, "books.isbn") {
			return catalog.ErrDuplicateISBN
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook returns a book by id.
func (s *Store) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	var row bookRow
	query := `SELECT * FROM books WHERE id = ?`
	if err := sqlx.GetContext(ctx, s.ext, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return row.toBook()
}

// GetBookByISBN returns a book by its ISBN.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	var row bookRow
	query := `SELECT * FROM books WHERE isbn = ?`
	if err := sqlx.GetContext(ctx, s.ext, &row, query, isbn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by isbn: %w", err)
	}
	return row.toBook()
}

// ListBooks returns books matching the filter, ordered by title.
func (s *Store) ListBooks(ctx context.Context, filter catalog.BookFilter) ([]catalog.Book, error) {
	query := `SELECT * FROM books`
	args := []any{}
	if filter.Title != "" {
		query += ` WHERE title LIKE ? COLLATE NOCASE`
		args = append(args, "%"+filter.Title+"%")
	}
	query += ` ORDER BY title ASC, created_at ASC`

	var rows []bookRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]catalog.Book, 0, len(rows))
	for _, r := range rows {
		b, err := r.toBook()
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, nil
}

// UpdateBook rewrites catalog fields. Quantity is left alone here; it
// only moves through AdjustQuantity.
func (s *Store) UpdateBook(ctx context.Context, book *catalog.Book) error {
	book.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = ?, author = ?, isbn = ?, publication_year = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.ext.ExecContext(ctx, query,
		book.Title, book.Author, book.ISBN, book.PublicationYear,
		fmtTime(book.UpdatedAt), book.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err, "books.isbn") {
			return catalog.ErrDuplicateISBN
		}
		return fmt.Errorf("failed to update book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if n == 0 {
		return catalog.ErrBookNotFound
	}
	return nil
}

// DeleteBook removes a catalog entry. Books referenced by loan rows
// (open or historical) cannot be deleted.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyError(err) {
			return catalog.ErrBookInUse
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if n == 0 {
		return catalog.ErrBookNotFound
	}
	return nil
}

// AdjustQuantity applies delta to the quantity in one guarded UPDATE.
// The WHERE clause carries the non-negative check, so the write and the
// check are a single atomic statement: concurrent reservations against
// the last copy leave exactly one winner.
func (s *Store) AdjustQuantity(ctx context.Context, id string, delta int) (*catalog.Book, error) {
	query := `
		UPDATE books
		SET quantity = quantity + ?, updated_at = ?
		WHERE id = ? AND quantity + ? >= 0
	`
	res, err := s.ext.ExecContext(ctx, query, delta, fmtTime(time.Now()), id, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	if n == 0 {
		// Nothing written: either the book is missing or the guard
		// rejected a negative result. Reading the row tells them apart.
		book, err := s.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &catalog.QuantityError{BookID: id, Quantity: book.Quantity, Delta: delta}
	}
	return s.GetBook(ctx, id)
}
