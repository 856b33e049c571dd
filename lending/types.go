/*
Package lending implements the loan lifecycle engine.

PURPOSE:
  A loan moves through exactly two states:

    ACTIVE (return_date null) --return--> RETURNED (terminal)

  Renewal is a self-transition on ACTIVE that extends the due date
  without changing state. The engine coordinates every transition with
  the book inventory inside a single storage transaction: creating a
  loan reserves a copy, returning it releases the copy, and either both
  writes commit or neither does.

INVARIANTS (checked in the engine, backed by storage constraints):
  - DueDate is strictly after LoanDate
  - ReturnDate is nil or >= LoanDate
  - 0 <= RenewalCount <= policy max (3 by default)
  - FineAmount >= 0 (smallest currency unit)
  - IsReturned is true iff ReturnDate is set

SEE ALSO:
  - engine.go: lifecycle operations
  - policy.go: duration, renewal, and fine constants
  - store.go: persistence contract
*/
package lending

import (
	"fmt"
	"time"
)

// Status is a loan's lifecycle state.
type Status string

const (
	// StatusActive means the book is out and the copy is reserved.
	StatusActive Status = "active"
	// StatusReturned is terminal; the copy has been released.
	StatusReturned Status = "returned"
)

// Loan records one borrowing of one book copy by one user. Loans are
// historical records: the engine never deletes them.
type Loan struct {
	ID           string
	UserID       string
	BookID       string
	LoanDate     time.Time
	DueDate      time.Time
	ReturnDate   *time.Time
	IsReturned   bool
	RenewalCount int
	FineAmount   int64 // smallest currency unit (cents)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status derives the lifecycle state from the returned flag.
func (l *Loan) Status() Status {
	if l.IsReturned {
		return StatusReturned
	}
	return StatusActive
}

// Overdue reports whether the loan is past due and not yet returned, as
// of the given instant. A loan due exactly at asOf is not yet overdue.
func (l *Loan) Overdue(asOf time.Time) bool {
	return !l.IsReturned && asOf.After(l.DueDate)
}

// Validate checks the loan invariants. The storage schema enforces the
// same rules as a last line of defense; checking here turns violations
// into typed errors before they hit the database.
func (l *Loan) Validate(maxRenewals int) error {
	switch {
	case l.UserID == "":
		return &ValidationError{Field: "user_id", Message: "required"}
	case l.BookID == "":
		return &ValidationError{Field: "book_id", Message: "required"}
	case !l.DueDate.After(l.LoanDate):
		return &ValidationError{Field: "due_date", Message: "must be after loan date"}
	case l.ReturnDate != nil && l.ReturnDate.Before(l.LoanDate):
		return &ValidationError{Field: "return_date", Message: "before loan date"}
	case l.IsReturned != (l.ReturnDate != nil):
		return &ValidationError{Field: "is_returned", Message: "inconsistent with return date"}
	case l.RenewalCount < 0 || l.RenewalCount > maxRenewals:
		return &ValidationError{
			Field:   "renewal_count",
			Message: fmt.Sprintf("outside 0..%d", maxRenewals),
		}
	case l.FineAmount < 0:
		return &ValidationError{Field: "fine_amount", Message: "negative"}
	}
	return nil
}

// Filter narrows ListLoans. Zero value lists everything.
type Filter struct {
	UserID   string
	BookID   string
	Returned *bool
	// DueBefore keeps loans whose due date is strictly before the given
	// instant. Combined with Returned=false it selects overdue loans.
	DueBefore *time.Time
}
