package lending_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/library-engine/catalog"
	"github.com/warp/library-engine/lending"
	"github.com/warp/library-engine/members"
	"github.com/warp/library-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEngine(t *testing.T) (*lending.Engine, *memory.Store) {
	t.Helper()
	store := memory.New()
	return lending.NewEngine(store, lending.DefaultPolicy()), store
}

func seedUser(t *testing.T, store *memory.Store) string {
	t.Helper()
	user := &members.User{
		ID:       uuid.NewString(),
		Email:    uuid.NewString() + "@example.com",
		IsActive: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user.ID
}

func seedBook(t *testing.T, store *memory.Store, quantity int) string {
	t.Helper()
	book := &catalog.Book{
		ID:       uuid.NewString(),
		Title:    "Seed Book",
		ISBN:     uuid.NewString(),
		Quantity: quantity,
	}
	require.NoError(t, store.CreateBook(context.Background(), book))
	return book.ID
}

func bookQuantity(t *testing.T, store *memory.Store, bookID string) int {
	t.Helper()
	book, err := store.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return book.Quantity
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreateLoan_ReservesCopyAndSetsDueDate(t *testing.T) {
	// GIVEN: a user and a book with 2 copies
	// WHEN: creating a loan
	// THEN: one copy is reserved and the due date is loan date + 14 days

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 2)

	loanDate := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{
		UserID:   userID,
		BookID:   bookID,
		LoanDate: loanDate,
	})
	require.NoError(t, err)

	assert.Equal(t, userID, loan.UserID)
	assert.Equal(t, bookID, loan.BookID)
	assert.Nil(t, loan.ReturnDate)
	assert.False(t, loan.IsReturned)
	assert.Equal(t, 0, loan.RenewalCount)
	assert.Equal(t, int64(0), loan.FineAmount)
	assert.Equal(t, loanDate.Add(14*24*time.Hour), loan.DueDate)
	assert.True(t, loan.DueDate.After(loan.LoanDate))
	assert.Equal(t, 1, bookQuantity(t, store, bookID))
}

func TestCreateLoan_BookUnavailable_QuantityUnchanged(t *testing.T) {
	// GIVEN: a book with zero copies
	// WHEN: creating a loan
	// THEN: it fails with ErrBookUnavailable and the quantity stays 0

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 0)

	_, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookID})
	require.ErrorIs(t, err, catalog.ErrBookUnavailable)
	assert.Equal(t, 0, bookQuantity(t, store, bookID))
}

func TestCreateLoan_MissingParties(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	_, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: "nobody", BookID: bookID})
	require.ErrorIs(t, err, lending.ErrUserNotFound)

	_, err = engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: "nothing"})
	require.ErrorIs(t, err, catalog.ErrBookNotFound)

	// Failed attempts must not leak reservations.
	assert.Equal(t, 1, bookQuantity(t, store, bookID))
}

func TestCreateLoan_ConcurrentOnLastCopy_ExactlyOneWins(t *testing.T) {
	// GIVEN: a book with a single copy
	// WHEN: two loans race for it
	// THEN: exactly one succeeds, the other gets ErrBookUnavailable, and
	//       the final quantity is zero

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookID})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, unavailable int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, catalog.ErrBookUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, 0, bookQuantity(t, store, bookID))
}

// =============================================================================
// RETURN
// =============================================================================

func TestReturnLoan_RoundTripRestoresQuantity(t *testing.T) {
	// GIVEN: a loan on a book that had 2 copies
	// WHEN: the loan is returned on time
	// THEN: the quantity is back to 2 and no fine accrues

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 2)

	loanDate := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{
		UserID: userID, BookID: bookID, LoanDate: loanDate,
	})
	require.NoError(t, err)
	require.Equal(t, 1, bookQuantity(t, store, bookID))

	returned, err := engine.ReturnLoan(ctx, loan.ID, loanDate.Add(5*24*time.Hour))
	require.NoError(t, err)

	assert.True(t, returned.IsReturned)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, int64(0), returned.FineAmount)
	assert.Equal(t, lending.StatusReturned, returned.Status())
	assert.Equal(t, 2, bookQuantity(t, store, bookID))
}

func TestReturnLoan_Twice_SecondFails_SingleRelease(t *testing.T) {
	// GIVEN: a returned loan
	// WHEN: returning it again
	// THEN: ErrAlreadyReturned, and the copy was released exactly once

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	_, err = engine.ReturnLoan(ctx, loan.ID, time.Time{})
	require.NoError(t, err)
	require.Equal(t, 1, bookQuantity(t, store, bookID))

	_, err = engine.ReturnLoan(ctx, loan.ID, time.Time{})
	require.ErrorIs(t, err, lending.ErrAlreadyReturned)
	assert.Equal(t, 1, bookQuantity(t, store, bookID))
}

func TestReturnLoan_ThreeDaysLate_FineAccrues(t *testing.T) {
	// GIVEN: a loan due at T
	// WHEN: it comes back at T+3 days with a 50 cent daily fine
	// THEN: the fine is 150 cents

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	loanDate := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{
		UserID: userID, BookID: bookID, LoanDate: loanDate,
	})
	require.NoError(t, err)

	returned, err := engine.ReturnLoan(ctx, loan.ID, loan.DueDate.Add(3*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(150), returned.FineAmount)
}

func TestReturnLoan_NotFound(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	_, err := engine.ReturnLoan(ctx, "missing", time.Time{})
	require.ErrorIs(t, err, lending.ErrLoanNotFound)
}

// =============================================================================
// RENEW
// =============================================================================

func TestRenewLoan_ExtendsDueDate(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	renewed, err := engine.RenewLoan(ctx, loan.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, renewed.RenewalCount)
	assert.Equal(t, loan.DueDate.Add(7*24*time.Hour), renewed.DueDate)
	assert.Equal(t, lending.StatusActive, renewed.Status())
}

func TestRenewLoan_FourthRenewalHitsCap(t *testing.T) {
	// GIVEN: a loan renewed three times
	// WHEN: renewing a fourth time
	// THEN: ErrRenewalLimitExceeded and the count stays at 3

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookID})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		renewed, err := engine.RenewLoan(ctx, loan.ID)
		require.NoError(t, err)
		require.Equal(t, i, renewed.RenewalCount)
	}

	_, err = engine.RenewLoan(ctx, loan.ID)
	require.ErrorIs(t, err, lending.ErrRenewalLimitExceeded)

	var limitErr *lending.RenewalLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Renewals)

	current, err := engine.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.RenewalCount)
}

func TestRenewLoan_ReturnedLoanRejected(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookID})
	require.NoError(t, err)
	_, err = engine.ReturnLoan(ctx, loan.ID, time.Time{})
	require.NoError(t, err)

	_, err = engine.RenewLoan(ctx, loan.ID)
	require.ErrorIs(t, err, lending.ErrAlreadyReturned)
}

func TestRenewLoan_OverdueLoanStillRenewable(t *testing.T) {
	// Overdue loans renew normally below the cap; only the cap blocks.

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookID := seedBook(t, store, 1)

	loanDate := time.Now().UTC().Add(-30 * 24 * time.Hour)
	loan, err := engine.CreateLoan(ctx, lending.CreateLoanInput{
		UserID: userID, BookID: bookID, LoanDate: loanDate,
	})
	require.NoError(t, err)
	require.True(t, loan.Overdue(time.Now().UTC()))

	renewed, err := engine.RenewLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.RenewalCount)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestListOverdue_StrictCutoff(t *testing.T) {
	// GIVEN: one loan due exactly at the cutoff and one due before it
	// WHEN: listing overdue loans
	// THEN: only the loan strictly past due shows up

	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	bookA := seedBook(t, store, 1)
	bookB := seedBook(t, store, 1)

	asOf := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)

	// Due exactly at asOf: not overdue.
	onTime, err := engine.CreateLoan(ctx, lending.CreateLoanInput{
		UserID: userID, BookID: bookA, LoanDate: asOf.Add(-14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.True(t, onTime.DueDate.Equal(asOf))

	late, err := engine.CreateLoan(ctx, lending.CreateLoanInput{
		UserID: userID, BookID: bookB, LoanDate: asOf.Add(-20 * 24 * time.Hour),
	})
	require.NoError(t, err)

	overdue, err := engine.ListOverdue(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
}

func TestListActiveForUser_ExcludesReturned(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)
	userID := seedUser(t, store)
	otherID := seedUser(t, store)
	bookA := seedBook(t, store, 1)
	bookB := seedBook(t, store, 1)
	bookC := seedBook(t, store, 1)

	open, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookA})
	require.NoError(t, err)

	closed, err := engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: userID, BookID: bookB})
	require.NoError(t, err)
	_, err = engine.ReturnLoan(ctx, closed.ID, time.Time{})
	require.NoError(t, err)

	_, err = engine.CreateLoan(ctx, lending.CreateLoanInput{UserID: otherID, BookID: bookC})
	require.NoError(t, err)

	active, err := engine.ListActiveForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)

	all, err := engine.ListForUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
