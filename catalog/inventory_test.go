package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/library-engine/catalog"
	"github.com/warp/library-engine/store/memory"
)

func newBook(t *testing.T, store *memory.Store, quantity int) *catalog.Book {
	t.Helper()
	book := &catalog.Book{
		ID:       uuid.NewString(),
		Title:    "Inventory Book",
		ISBN:     uuid.NewString(),
		Quantity: quantity,
	}
	require.NoError(t, store.CreateBook(context.Background(), book))
	return book
}

func TestInventory_ReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := catalog.NewInventory(store)
	book := newBook(t, store, 2)

	reserved, err := inv.ReserveCopy(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reserved.Quantity)

	released, err := inv.ReleaseCopy(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, released.Quantity)
}

func TestInventory_ReserveAtZero_Unavailable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := catalog.NewInventory(store)
	book := newBook(t, store, 0)

	_, err := inv.ReserveCopy(ctx, book.ID)
	require.ErrorIs(t, err, catalog.ErrBookUnavailable)

	current, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Quantity)
}

func TestInventory_ReserveMissingBook(t *testing.T) {
	ctx := context.Background()
	inv := catalog.NewInventory(memory.New())

	_, err := inv.ReserveCopy(ctx, "missing")
	require.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestInventory_AdjustQuantity(t *testing.T) {
	// Mirrors the stock-correction flow: -3, +5, then an over-withdrawal
	// that must be rejected without a partial write.

	ctx := context.Background()
	store := memory.New()
	inv := catalog.NewInventory(store)
	book := newBook(t, store, 10)

	down, err := inv.AdjustQuantity(ctx, book.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 7, down.Quantity)

	up, err := inv.AdjustQuantity(ctx, book.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, up.Quantity)

	_, err = inv.AdjustQuantity(ctx, book.ID, -20)
	require.ErrorIs(t, err, catalog.ErrInvalidQuantity)

	var qerr *catalog.QuantityError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, 12, qerr.Quantity)
	assert.Equal(t, -20, qerr.Delta)

	current, err := store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, current.Quantity)
}

func TestInventory_AdjustZeroDelta_NoOp(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := catalog.NewInventory(store)
	book := newBook(t, store, 4)

	current, err := inv.AdjustQuantity(ctx, book.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, current.Quantity)
}
