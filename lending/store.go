package lending

import (
	"context"

	"github.com/warp/library-engine/catalog"
)

// Store is the persistence contract of the lifecycle engine. It embeds
// the book store because reservation and loan-row writes must share one
// transaction: inside WithTx the engine sees a single view over both.
type Store interface {
	catalog.BookStore

	CreateLoan(ctx context.Context, loan *Loan) error

	// GetLoan returns ErrLoanNotFound when the id is absent.
	GetLoan(ctx context.Context, id string) (*Loan, error)

	// UpdateLoan rewrites a loan row (renewal, return).
	UpdateLoan(ctx context.Context, loan *Loan) error

	// ListLoans returns loans matching the filter, oldest first.
	ListLoans(ctx context.Context, filter Filter) ([]Loan, error)

	// DeleteLoan is an administrative override only; the lifecycle engine
	// never calls it. Loans are kept as historical records.
	DeleteLoan(ctx context.Context, id string) error

	// UserExists reports whether the user id references a stored user.
	UserExists(ctx context.Context, id string) (bool, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. The Store handed to fn is
	// bound to that transaction. If fn returns an error the transaction
	// is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
