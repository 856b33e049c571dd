/*
Package memory provides an in-memory implementation of the storage
interfaces, for tests and local development.

PURPOSE:
  Implements the same contract as store/sqlite without a database.
  WithTx takes a snapshot of all tables before running the callback and
  restores it on error, so rollback semantics match the SQL store. A
  single mutex serializes transactions, which is exactly the row-level
  serialization the quantity invariant needs.

SEE ALSO:
  - store/sqlite: production implementation
  - lending engine tests run their lifecycle properties on this store
*/
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/library-engine/catalog"
	"github.com/warp/library-engine/lending"
	"github.com/warp/library-engine/members"
)

// Store is an in-memory implementation of lending.TxStore plus the
// catalog and members store interfaces.
type Store struct {
	mu         sync.Mutex
	books      map[string]catalog.Book
	categories map[string]catalog.Category
	users      map[string]members.User
	loans      map[string]lending.Loan
	// inTx suppresses locking for the transaction-bound view; the outer
	// WithTx already holds the mutex.
	inTx bool
}

var _ lending.TxStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		books:      make(map[string]catalog.Book),
		categories: make(map[string]catalog.Category),
		users:      make(map[string]members.User),
		loans:      make(map[string]lending.Loan),
	}
}

func (m *Store) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// WithTx serializes on the store mutex, snapshots every table, and
// restores the snapshot when fn fails. All-or-nothing, like the SQL
// store's transactions.
func (m *Store) WithTx(_ context.Context, fn func(lending.Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := &Store{
		books:      copyMap(m.books),
		categories: copyMap(m.categories),
		users:      copyMap(m.users),
		loans:      copyMap(m.loans),
	}

	view := &Store{
		books:      m.books,
		categories: m.categories,
		users:      m.users,
		loans:      m.loans,
		inTx:       true,
	}
	if err := fn(view); err != nil {
		m.books = snapshot.books
		m.categories = snapshot.categories
		m.users = snapshot.users
		m.loans = snapshot.loans
		return err
	}
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// =============================================================================
// BOOK STORE
// =============================================================================

func (m *Store) CreateBook(_ context.Context, book *catalog.Book) error {
	defer m.lock()()

	for _, b := range m.books {
		if b.ISBN == book.ISBN {
			return catalog.ErrDuplicateISBN
		}
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}
	book.UpdatedAt = book.CreatedAt
	m.books[book.ID] = *book
	return nil
}

func (m *Store) GetBook(_ context.Context, id string) (*catalog.Book, error) {
	defer m.lock()()
	return m.getBookLocked(id)
}

func (m *Store) getBookLocked(id string) (*catalog.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	return &book, nil
}

func (m *Store) GetBookByISBN(_ context.Context, isbn string) (*catalog.Book, error) {
	defer m.lock()()

	for _, b := range m.books {
		if b.ISBN == isbn {
			book := b
			return &book, nil
		}
	}
	return nil, catalog.ErrBookNotFound
}

func (m *Store) ListBooks(_ context.Context, filter catalog.BookFilter) ([]catalog.Book, error) {
	defer m.lock()()

	books := make([]catalog.Book, 0, len(m.books))
	for _, b := range m.books {
		if filter.Title != "" &&
			!strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Title)) {
			continue
		}
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (m *Store) UpdateBook(_ context.Context, book *catalog.Book) error {
	defer m.lock()()

	current, ok := m.books[book.ID]
	if !ok {
		return catalog.ErrBookNotFound
	}
	for _, b := range m.books {
		if b.ID != book.ID && b.ISBN == book.ISBN {
			return catalog.ErrDuplicateISBN
		}
	}
	book.Quantity = current.Quantity // quantity only moves through AdjustQuantity
	book.UpdatedAt = time.Now().UTC()
	m.books[book.ID] = *book
	return nil
}

func (m *Store) DeleteBook(_ context.Context, id string) error {
	defer m.lock()()

	if _, ok := m.books[id]; !ok {
		return catalog.ErrBookNotFound
	}
	for _, l := range m.loans {
		if l.BookID == id {
			return catalog.ErrBookInUse
		}
	}
	delete(m.books, id)
	return nil
}

func (m *Store) AdjustQuantity(_ context.Context, id string, delta int) (*catalog.Book, error) {
	defer m.lock()()

	book, ok := m.books[id]
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	if book.Quantity+delta < 0 {
		return nil, &catalog.QuantityError{BookID: id, Quantity: book.Quantity, Delta: delta}
	}
	book.Quantity += delta
	book.UpdatedAt = time.Now().UTC()
	m.books[id] = book
	return &book, nil
}

// =============================================================================
// CATEGORY STORE
// =============================================================================

func (m *Store) CreateCategory(_ context.Context, category *catalog.Category) error {
	defer m.lock()()

	for _, c := range m.categories {
		if c.Name == category.Name {
			return catalog.ErrDuplicateCategory
		}
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *Store) GetCategory(_ context.Context, id string) (*catalog.Category, error) {
	defer m.lock()()

	category, ok := m.categories[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return &category, nil
}

func (m *Store) ListCategories(_ context.Context) ([]catalog.Category, error) {
	defer m.lock()()

	categories := make([]catalog.Category, 0, len(m.categories))
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *Store) UpdateCategory(_ context.Context, category *catalog.Category) error {
	defer m.lock()()

	if _, ok := m.categories[category.ID]; !ok {
		return catalog.ErrCategoryNotFound
	}
	for _, c := range m.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return catalog.ErrDuplicateCategory
		}
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *Store) DeleteCategory(_ context.Context, id string) error {
	defer m.lock()()

	if _, ok := m.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

// =============================================================================
// USER STORE
// =============================================================================

func (m *Store) CreateUser(_ context.Context, user *members.User) error {
	defer m.lock()()

	for _, u := range m.users {
		if u.Email == user.Email {
			return members.ErrDuplicateEmail
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Store) GetUser(_ context.Context, id string) (*members.User, error) {
	defer m.lock()()

	user, ok := m.users[id]
	if !ok {
		return nil, members.ErrUserNotFound
	}
	return &user, nil
}

func (m *Store) GetUserByEmail(_ context.Context, email string) (*members.User, error) {
	defer m.lock()()

	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, members.ErrUserNotFound
}

func (m *Store) ListUsers(_ context.Context) ([]members.User, error) {
	defer m.lock()()

	users := make([]members.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (m *Store) UpdateUser(_ context.Context, user *members.User) error {
	defer m.lock()()

	if _, ok := m.users[user.ID]; !ok {
		return members.ErrUserNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return members.ErrDuplicateEmail
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Store) DeleteUser(_ context.Context, id string) error {
	defer m.lock()()

	if _, ok := m.users[id]; !ok {
		return members.ErrUserNotFound
	}
	for _, l := range m.loans {
		if l.UserID == id {
			return members.ErrUserInUse
		}
	}
	delete(m.users, id)
	return nil
}

func (m *Store) UserExists(_ context.Context, id string) (bool, error) {
	defer m.lock()()

	_, ok := m.users[id]
	return ok, nil
}

// =============================================================================
// LOAN STORE
// =============================================================================

func (m *Store) CreateLoan(_ context.Context, loan *lending.Loan) error {
	defer m.lock()()

	now := time.Now().UTC()
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = now
	}
	loan.UpdatedAt = now
	m.loans[loan.ID] = *loan
	return nil
}

func (m *Store) GetLoan(_ context.Context, id string) (*lending.Loan, error) {
	defer m.lock()()

	loan, ok := m.loans[id]
	if !ok {
		return nil, lending.ErrLoanNotFound
	}
	return &loan, nil
}

func (m *Store) UpdateLoan(_ context.Context, loan *lending.Loan) error {
	defer m.lock()()

	if _, ok := m.loans[loan.ID]; !ok {
		return lending.ErrLoanNotFound
	}
	loan.UpdatedAt = time.Now().UTC()
	m.loans[loan.ID] = *loan
	return nil
}

func (m *Store) ListLoans(_ context.Context, filter lending.Filter) ([]lending.Loan, error) {
	defer m.lock()()

	loans := make([]lending.Loan, 0, len(m.loans))
	for _, l := range m.loans {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.BookID != "" && l.BookID != filter.BookID {
			continue
		}
		if filter.Returned != nil && l.IsReturned != *filter.Returned {
			continue
		}
		if filter.DueBefore != nil && !l.DueDate.Before(*filter.DueBefore) {
			continue
		}
		loans = append(loans, l)
	}
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].LoanDate.Equal(loans[j].LoanDate) {
			return loans[i].ID < loans[j].ID
		}
		return loans[i].LoanDate.Before(loans[j].LoanDate)
	})
	return loans, nil
}

func (m *Store) DeleteLoan(_ context.Context, id string) error {
	defer m.lock()()

	if _, ok := m.loans[id]; !ok {
		return lending.ErrLoanNotFound
	}
	delete(m.loans, id)
	return nil
}
