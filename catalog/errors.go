package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog and inventory operations. Use with errors.Is().
var (
	// ErrBookNotFound is returned when a referenced book id does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookUnavailable is returned when a reservation finds zero copies.
	ErrBookUnavailable = errors.New("book unavailable")

	// ErrInvalidQuantity is returned when an adjustment would drive the
	// quantity negative. State is left unchanged.
	ErrInvalidQuantity = errors.New("quantity cannot go negative")

	// ErrDuplicateISBN is returned when a create/update collides with an
	// existing book's ISBN.
	ErrDuplicateISBN = errors.New("isbn already registered")

	// ErrBookInUse is returned when deleting a book that loans still
	// reference. Loan rows are historical records, so this also covers
	// returned loans.
	ErrBookInUse = errors.New("book referenced by loans")

	// ErrCategoryNotFound is returned when a referenced category id does
	// not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrDuplicateCategory is returned when a category name collides.
	ErrDuplicateCategory = errors.New("category name already exists")

	// ErrValidation is returned when input fails a basic shape check
	// before it reaches storage.
	ErrValidation = errors.New("invalid input")
)

func errMissingField(name string) error {
	return fmt.Errorf("%s is required: %w", name, ErrValidation)
}

// QuantityError carries the details of a rejected quantity adjustment.
type QuantityError struct {
	BookID   string
	Quantity int
	Delta    int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("adjusting book %s by %d from quantity %d would go negative",
		e.BookID, e.Delta, e.Quantity)
}

func (e *QuantityError) Unwrap() error {
	return ErrInvalidQuantity
}

// IsNotFound reports whether err indicates a missing catalog entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrCategoryNotFound)
}

// IsConflict reports whether err indicates a uniqueness or referential
// violation that a retry with the same input cannot fix.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateISBN) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrBookInUse)
}
