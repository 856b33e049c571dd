/*
engine.go - Loan lifecycle operations

PURPOSE:
  Implements the four lifecycle operations (create, renew, return, query)
  over a transactional store. Each mutating operation runs in a single
  transaction so the loan row and the inventory count move together:

    CreateLoan: reserve copy + insert loan row
    RenewLoan:  update due date + renewal count
    ReturnLoan: update loan row + release copy

CONCURRENCY:
  The engine holds no locks of its own. Concurrent creations against the
  same book serialize on the guarded quantity update inside the store;
  with one copy left, exactly one caller wins and the rest get
  catalog.ErrBookUnavailable.

SEE ALSO:
  - store.go: transaction contract
  - catalog/inventory.go: reserve/release semantics
  - fine.go: late-return fines
*/
package lending

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/library-engine/catalog"
)

// Engine drives loans through their lifecycle.
type Engine struct {
	store  TxStore
	policy Policy
	now    func() time.Time
}

// NewEngine creates a lifecycle engine with the given store and policy.
func NewEngine(store TxStore, policy Policy) *Engine {
	return &Engine{store: store, policy: policy, now: time.Now}
}

// Policy returns the engine's lending terms.
func (e *Engine) Policy() Policy {
	return e.policy
}

// CreateLoanInput carries the parameters for a new loan. LoanDate and
// Duration are optional; zero values take the engine defaults.
type CreateLoanInput struct {
	UserID   string
	BookID   string
	LoanDate time.Time
	Duration time.Duration
}

// CreateLoan reserves a copy of the book and opens a loan for it. The
// reservation and the loan row commit atomically: if the insert fails
// the reservation rolls back with it.
//
// Fails with ErrUserNotFound or catalog.ErrBookNotFound for missing
// parties and catalog.ErrBookUnavailable when no copies are left.
func (e *Engine) CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error) {
	if in.UserID == "" {
		return nil, &ValidationError{Field: "user_id", Message: "required"}
	}
	if in.BookID == "" {
		return nil, &ValidationError{Field: "book_id", Message: "required"}
	}

	loanDate := in.LoanDate
	if loanDate.IsZero() {
		loanDate = e.now()
	}
	duration := in.Duration
	if duration == 0 {
		duration = e.policy.LoanDuration
	}
	if duration <= 0 {
		return nil, &ValidationError{Field: "duration", Message: "must be positive"}
	}

	var created *Loan
	err := e.store.WithTx(ctx, func(s Store) error {
		exists, err := s.UserExists(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		inventory := catalog.NewInventory(s)
		if _, err := inventory.ReserveCopy(ctx, in.BookID); err != nil {
			return err
		}

		loan := &Loan{
			ID:       uuid.NewString(),
			UserID:   in.UserID,
			BookID:   in.BookID,
			LoanDate: loanDate,
			DueDate:  loanDate.Add(duration),
		}
		if err := loan.Validate(e.policy.MaxRenewals); err != nil {
			return err
		}
		if err := s.CreateLoan(ctx, loan); err != nil {
			return err
		}
		created = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenewLoan extends an active loan's due date by the renewal extension
// and bumps its renewal count.
//
// Fails with ErrLoanNotFound, ErrAlreadyReturned on a returned loan, and
// ErrRenewalLimitExceeded at the cap. Renewing an overdue loan is
// allowed below the cap; the new due date extends from the old one, so
// it may still lie in the past.
func (e *Engine) RenewLoan(ctx context.Context, loanID string) (*Loan, error) {
	var renewed *Loan
	err := e.store.WithTx(ctx, func(s Store) error {
		loan, err := s.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.IsReturned {
			return ErrAlreadyReturned
		}
		if loan.RenewalCount >= e.policy.MaxRenewals {
			return &RenewalLimitError{
				LoanID:   loan.ID,
				Renewals: loan.RenewalCount,
				Limit:    e.policy.MaxRenewals,
			}
		}

		loan.DueDate = loan.DueDate.Add(e.policy.RenewalExtension)
		loan.RenewalCount++
		if err := loan.Validate(e.policy.MaxRenewals); err != nil {
			return err
		}
		if err := s.UpdateLoan(ctx, loan); err != nil {
			return err
		}
		renewed = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renewed, nil
}

// ReturnLoan closes an active loan: sets the return date, computes the
// fine for whole days of lateness, and releases the reserved copy. The
// loan update and the release commit atomically.
//
// Fails with ErrLoanNotFound and, on a second return, ErrAlreadyReturned
// so the copy can never be released twice. A zero returnDate means now.
func (e *Engine) ReturnLoan(ctx context.Context, loanID string, returnDate time.Time) (*Loan, error) {
	if returnDate.IsZero() {
		returnDate = e.now()
	}

	var returned *Loan
	err := e.store.WithTx(ctx, func(s Store) error {
		loan, err := s.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.IsReturned {
			return ErrAlreadyReturned
		}
		if returnDate.Before(loan.LoanDate) {
			return &ValidationError{Field: "return_date", Message: "before loan date"}
		}

		rd := returnDate
		loan.ReturnDate = &rd
		loan.IsReturned = true
		loan.FineAmount = e.policy.Fine(loan.DueDate, returnDate)
		if err := loan.Validate(e.policy.MaxRenewals); err != nil {
			return err
		}
		if err := s.UpdateLoan(ctx, loan); err != nil {
			return err
		}

		inventory := catalog.NewInventory(s)
		if _, err := inventory.ReleaseCopy(ctx, loan.BookID); err != nil {
			return err
		}
		returned = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// =============================================================================
// QUERIES - read-only, no side effects
// =============================================================================

// GetLoan returns a loan by id.
func (e *Engine) GetLoan(ctx context.Context, id string) (*Loan, error) {
	return e.store.GetLoan(ctx, id)
}

// ListLoans returns loans matching the filter.
func (e *Engine) ListLoans(ctx context.Context, filter Filter) ([]Loan, error) {
	return e.store.ListLoans(ctx, filter)
}

// ListActiveForUser returns a user's open loans.
func (e *Engine) ListActiveForUser(ctx context.Context, userID string) ([]Loan, error) {
	returned := false
	return e.store.ListLoans(ctx, Filter{UserID: userID, Returned: &returned})
}

// ListForUser returns all of a user's loans, open and closed.
func (e *Engine) ListForUser(ctx context.Context, userID string) ([]Loan, error) {
	return e.store.ListLoans(ctx, Filter{UserID: userID})
}

// ListOverdue returns loans past due and not yet returned as of the
// given instant (zero means now). A loan due exactly at asOf is not
// overdue.
func (e *Engine) ListOverdue(ctx context.Context, asOf time.Time) ([]Loan, error) {
	if asOf.IsZero() {
		asOf = e.now()
	}
	returned := false
	return e.store.ListLoans(ctx, Filter{Returned: &returned, DueBefore: &asOf})
}
