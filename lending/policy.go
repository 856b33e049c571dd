package lending

import (
	"fmt"
	"time"
)

// Policy holds the lending business constants. The values are explicit
// rather than scattered: loan length, how much a renewal buys, how many
// renewals a loan gets, and what a late day costs.
type Policy struct {
	// LoanDuration is the default time between loan date and due date.
	LoanDuration time.Duration

	// RenewalExtension is added to the due date on each renewal.
	RenewalExtension time.Duration

	// MaxRenewals caps RenewalCount. The storage schema enforces the
	// same cap as a check constraint.
	MaxRenewals int

	// DailyFineCents is charged per whole day a return is late, in the
	// smallest currency unit.
	DailyFineCents int64
}

// DefaultPolicy returns the standard lending terms: two-week loans,
// one-week renewals, at most three renewals, 50 cents per late day.
func DefaultPolicy() Policy {
	return Policy{
		LoanDuration:     14 * 24 * time.Hour,
		RenewalExtension: 7 * 24 * time.Hour,
		MaxRenewals:      3,
		DailyFineCents:   50,
	}
}

// Validate rejects policies that would break engine invariants.
func (p Policy) Validate() error {
	switch {
	case p.LoanDuration <= 0:
		return fmt.Errorf("policy: loan duration must be positive")
	case p.RenewalExtension <= 0:
		return fmt.Errorf("policy: renewal extension must be positive")
	case p.MaxRenewals < 0:
		return fmt.Errorf("policy: max renewals must not be negative")
	case p.DailyFineCents < 0:
		return fmt.Errorf("policy: daily fine must not be negative")
	}
	return nil
}
