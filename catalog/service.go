/*
service.go - Catalog CRUD for books and categories

PURPOSE:
  Plain create/read/update/delete over the catalog stores, with input
  validation and uniqueness surfaced as typed errors (ErrDuplicateISBN,
  ErrDuplicateCategory). No inventory logic lives here; quantity changes
  go through the Inventory manager.

SEE ALSO:
  - inventory.go: quantity mutations
  - store/sqlite: constraint-backed uniqueness
*/
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service provides catalog CRUD.
type Service struct {
	books      BookStore
	categories CategoryStore
}

// NewService creates a catalog service over the given stores.
func NewService(books BookStore, categories CategoryStore) *Service {
	return &Service{books: books, categories: categories}
}

// =============================================================================
// BOOKS
// =============================================================================

// CreateBookInput carries the fields for a new catalog entry.
type CreateBookInput struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	Quantity        int
}

// CreateBook registers a new book. The initial quantity is the number of
// copies the library owns; it must not be negative.
func (s *Service) CreateBook(ctx context.Context, in CreateBookInput) (*Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("create book: %w", errMissingField("title"))
	}
	if strings.TrimSpace(in.ISBN) == "" {
		return nil, fmt.Errorf("create book: %w", errMissingField("isbn"))
	}
	if in.Quantity < 0 {
		return nil, &QuantityError{Quantity: 0, Delta: in.Quantity}
	}

	book := &Book{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		Quantity:        in.Quantity,
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook returns a book by id.
func (s *Service) GetBook(ctx context.Context, id string) (*Book, error) {
	return s.books.GetBook(ctx, id)
}

// GetBookByISBN returns a book by its ISBN.
func (s *Service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	return s.books.GetBookByISBN(ctx, isbn)
}

// SearchByTitle returns books whose title contains the given keyword.
func (s *Service) SearchByTitle(ctx context.Context, keyword string) ([]Book, error) {
	return s.books.ListBooks(ctx, BookFilter{Title: keyword})
}

// ListBooks returns books matching the filter.
func (s *Service) ListBooks(ctx context.Context, filter BookFilter) ([]Book, error) {
	return s.books.ListBooks(ctx, filter)
}

// UpdateBookInput carries catalog-field updates. Nil fields are unchanged.
// Quantity is deliberately absent: stock moves through Inventory.
type UpdateBookInput struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationYear *int
}

// UpdateBook rewrites catalog fields of an existing book.
func (s *Service) UpdateBook(ctx context.Context, id string, in UpdateBookInput) (*Book, error) {
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.Author != nil {
		book.Author = *in.Author
	}
	if in.ISBN != nil {
		book.ISBN = *in.ISBN
	}
	if in.PublicationYear != nil {
		book.PublicationYear = *in.PublicationYear
	}

	if err := s.books.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book from the catalog. Books that loans reference
// cannot be deleted (ErrBookInUse); loan rows are kept as history.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	return s.books.DeleteBook(ctx, id)
}

// =============================================================================
// CATEGORIES
// =============================================================================

// CreateCategory registers a new category. Names are unique.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("create category: %w", errMissingField("name"))
	}

	category := &Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory returns a category by id.
func (s *Service) GetCategory(ctx context.Context, id string) (*Category, error) {
	return s.categories.GetCategory(ctx, id)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.ListCategories(ctx)
}

// UpdateCategory rewrites name and/or description. Nil fields are unchanged.
func (s *Service) UpdateCategory(ctx context.Context, id string, name, description *string) (*Category, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		category.Name = *name
	}
	if description != nil {
		category.Description = *description
	}
	if err := s.categories.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.DeleteCategory(ctx, id)
}
