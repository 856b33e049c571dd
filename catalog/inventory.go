/*
inventory.go - Atomic quantity management for book copies

PURPOSE:
  The Inventory manager is the only component allowed to mutate a book's
  available-copy count. It translates the loan lifecycle's needs
  (reserve a copy, release a copy) into guarded adjustments.

CONTRACT:
  ReserveCopy:    quantity > 0 required; decrements by one
  ReleaseCopy:    increments by one; always paired with a prior reserve
  AdjustQuantity: admin correction by arbitrary delta, rejected if the
                  result would be negative (no partial write)

TRANSACTIONS:
  Inventory runs against whatever BookStore it is handed. The lending
  engine constructs one over the transaction-bound store view, so the
  reservation and the loan-row write commit or roll back together.

SEE ALSO:
  - store.go: AdjustQuantity atomicity requirement
  - lending/engine.go: per-transaction construction
*/
package catalog

import (
	"context"
	"errors"
)

// Inventory manages a book's available-copy count.
type Inventory struct {
	books BookStore
}

// NewInventory creates an inventory manager over the given store.
func NewInventory(books BookStore) *Inventory {
	return &Inventory{books: books}
}

// ReserveCopy takes one copy of the book off the shelf. Returns
// ErrBookUnavailable when no copies are available and ErrBookNotFound
// when the book does not exist.
func (inv *Inventory) ReserveCopy(ctx context.Context, bookID string) (*Book, error) {
	book, err := inv.books.AdjustQuantity(ctx, bookID, -1)
	if err != nil {
		if errors.Is(err, ErrInvalidQuantity) {
			// Zero copies: the guarded decrement found nothing to take.
			return nil, ErrBookUnavailable
		}
		return nil, err
	}
	return book, nil
}

// ReleaseCopy puts one copy of the book back on the shelf. Returns
// ErrBookNotFound when the book does not exist. A positive delta cannot
// violate the quantity check, so no availability error is possible here.
func (inv *Inventory) ReleaseCopy(ctx context.Context, bookID string) (*Book, error) {
	return inv.books.AdjustQuantity(ctx, bookID, 1)
}

// AdjustQuantity applies an arbitrary delta, for stock corrections
// (acquisitions, lost or damaged copies). Returns ErrInvalidQuantity when
// the result would be negative; the stored quantity is left unchanged.
func (inv *Inventory) AdjustQuantity(ctx context.Context, bookID string, delta int) (*Book, error) {
	if delta == 0 {
		return inv.books.GetBook(ctx, bookID)
	}
	return inv.books.AdjustQuantity(ctx, bookID, delta)
}
