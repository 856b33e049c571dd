/*
errors.go - Typed errors for the loan lifecycle

PURPOSE:
  Every failure mode of the lifecycle engine maps to a distinct sentinel
  so the API layer can pick a status code without re-deriving business
  meaning. Inventory errors (unavailable, negative quantity) live in the
  catalog package and are propagated unwrapped.

USAGE:
  if errors.Is(err, lending.ErrRenewalLimitExceeded) { ... }

SEE ALSO:
  - catalog/errors.go: inventory error taxonomy
  - api/respond.go: error to HTTP status mapping
*/
package lending

import (
	"errors"
	"fmt"

	"github.com/warp/library-engine/catalog"
)

// Sentinel errors for lifecycle operations. Use with errors.Is().
var (
	// ErrLoanNotFound is returned when a referenced loan id is absent.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrUserNotFound is returned when the borrowing user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyReturned guards double returns and renewals of returned
	// loans. Returning twice is an error, not a no-op: the second call
	// must not release a second copy.
	ErrAlreadyReturned = errors.New("loan already returned")

	// ErrRenewalLimitExceeded is returned when the renewal cap is reached.
	ErrRenewalLimitExceeded = errors.New("renewal limit exceeded")
)

// ValidationError reports an invariant violation caught before storage.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// RenewalLimitError carries the details of a rejected renewal.
type RenewalLimitError struct {
	LoanID   string
	Renewals int
	Limit    int
}

func (e *RenewalLimitError) Error() string {
	return fmt.Sprintf("loan %s already renewed %d of %d times", e.LoanID, e.Renewals, e.Limit)
}

func (e *RenewalLimitError) Unwrap() error {
	return ErrRenewalLimitExceeded
}

// IsNotFound reports whether err indicates a missing entity anywhere in
// the lending flow.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		catalog.IsNotFound(err)
}

// IsConflict reports whether err indicates a state conflict: the request
// was well-formed but the current state forbids it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyReturned) ||
		errors.Is(err, ErrRenewalLimitExceeded) ||
		errors.Is(err, catalog.ErrBookUnavailable) ||
		errors.Is(err, catalog.ErrInvalidQuantity) ||
		catalog.IsConflict(err)
}

// IsClientError reports whether err is the caller's fault rather than a
// storage failure.
func IsClientError(err error) bool {
	var ve *ValidationError
	return IsNotFound(err) || IsConflict(err) ||
		errors.As(err, &ve) || errors.Is(err, catalog.ErrValidation)
}
