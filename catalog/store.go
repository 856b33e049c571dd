package catalog

import "context"

// BookStore handles persistence of book records.
//
// AdjustQuantity is the single quantity-mutation primitive and MUST be
// atomic: the check "resulting quantity >= 0" and the write happen in one
// statement, so concurrent callers serialize on the book row and the
// quantity never goes negative. Everything else is plain CRUD.
type BookStore interface {
	CreateBook(ctx context.Context, book *Book) error

	// GetBook returns ErrBookNotFound when the id is absent.
	GetBook(ctx context.Context, id string) (*Book, error)

	// GetBookByISBN returns ErrBookNotFound when no book carries the ISBN.
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	ListBooks(ctx context.Context, filter BookFilter) ([]Book, error)

	// UpdateBook rewrites the catalog fields of an existing record.
	// Quantity is NOT written here; use AdjustQuantity.
	UpdateBook(ctx context.Context, book *Book) error

	// DeleteBook returns ErrBookInUse when loan rows reference the book.
	DeleteBook(ctx context.Context, id string) error

	// AdjustQuantity applies delta to the book's quantity and returns the
	// updated record. Returns ErrBookNotFound for a missing id and a
	// *QuantityError (wrapping ErrInvalidQuantity) when the result would
	// be negative, leaving the row unchanged.
	AdjustQuantity(ctx context.Context, id string, delta int) (*Book, error)
}

// CategoryStore handles persistence of category records.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error
}
