/*
Package catalog manages the book catalog and its inventory.

PURPOSE:
  Owns book and category records and the quantity invariant: the number
  of available copies of a book can never go negative. All quantity
  mutations flow through the Inventory manager so that reservations and
  releases stay paired with loan lifecycle transitions.

KEY CONCEPTS:
  - Book: a catalog entry with a count of available copies
  - Category: a simple labelled grouping, unique by name
  - Inventory: atomic reserve/release/adjust operations over quantity

INVARIANTS:
  - Book.Quantity >= 0 at all times, including under concurrent reservations
  - Book.ISBN is unique across the catalog
  - Category.Name is unique

SEE ALSO:
  - inventory.go: quantity mutation contract
  - service.go: catalog CRUD
  - lending package: consumes Inventory inside loan transactions
*/
package catalog

import "time"

// Book is a catalog entry. Quantity counts available copies, not owned
// copies: it drops by one when a loan is created and rises by one when
// the loan is returned.
type Book struct {
	ID              string
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	Quantity        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Category is a labelled grouping of books, unique by name.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// BookFilter narrows ListBooks. Zero value lists everything.
type BookFilter struct {
	// Title matches as a case-insensitive substring.
	Title string
}
