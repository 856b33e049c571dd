package lending_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/library-engine/lending"
)

func TestDaysLate(t *testing.T) {
	due := time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		returned time.Time
		want     int
	}{
		{"before due", due.Add(-48 * time.Hour), 0},
		{"exactly due", due, 0},
		{"within first day", due.Add(23 * time.Hour), 0},
		{"one full day", due.Add(24 * time.Hour), 1},
		{"three days", due.Add(3 * 24 * time.Hour), 3},
		{"three and a half days", due.Add(84 * time.Hour), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lending.DaysLate(due, tt.returned))
		})
	}
}

func TestPolicyFine(t *testing.T) {
	policy := lending.DefaultPolicy()
	due := time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), policy.Fine(due, due))
	assert.Equal(t, int64(150), policy.Fine(due, due.Add(3*24*time.Hour)))
}

func TestCentsConversion(t *testing.T) {
	assert.Equal(t, "1.50", lending.CentsToDecimal(150).StringFixed(2))
	assert.Equal(t, "0.00", lending.CentsToDecimal(0).StringFixed(2))
	assert.Equal(t, int64(150), lending.DecimalToCents(lending.CentsToDecimal(150)))
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, lending.DefaultPolicy().Validate())

	bad := lending.DefaultPolicy()
	bad.LoanDuration = 0
	require.Error(t, bad.Validate())

	bad = lending.DefaultPolicy()
	bad.DailyFineCents = -1
	require.Error(t, bad.Validate())
}

func TestLoanValidate(t *testing.T) {
	loanDate := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	valid := func() lending.Loan {
		return lending.Loan{
			UserID:   "u",
			BookID:   "b",
			LoanDate: loanDate,
			DueDate:  loanDate.Add(14 * 24 * time.Hour),
		}
	}

	require.NoError(t, ptr(valid()).Validate(3))

	l := valid()
	l.DueDate = l.LoanDate
	require.Error(t, ptr(l).Validate(3))

	l = valid()
	early := loanDate.Add(-time.Hour)
	l.ReturnDate = &early
	l.IsReturned = true
	require.Error(t, ptr(l).Validate(3))

	l = valid()
	l.IsReturned = true // no return date
	require.Error(t, ptr(l).Validate(3))

	l = valid()
	l.RenewalCount = 4
	require.Error(t, ptr(l).Validate(3))

	l = valid()
	l.FineAmount = -1
	require.Error(t, ptr(l).Validate(3))
}

func TestLoanOverdue_StrictComparison(t *testing.T) {
	due := time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC)
	loan := lending.Loan{DueDate: due}

	assert.False(t, loan.Overdue(due), "due exactly now is not overdue")
	assert.True(t, loan.Overdue(due.Add(time.Second)))

	loan.IsReturned = true
	assert.False(t, loan.Overdue(due.Add(time.Hour)))
}

func ptr(l lending.Loan) *lending.Loan { return &l }
