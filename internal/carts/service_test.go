package carts_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/carts"
	"github.com/ariefcatur/go-khana-orders/internal/memory"
)

var dal = carts.Item{ID: "r1", Name: "Dal", Price: 100}

func TestCartLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())

	c, err := svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, int64(100), c.Subtotal)

	c, err = svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(200), c.Subtotal)

	c, err = svc.UpdateQuantity(ctx, "u1", "r1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(500), c.Subtotal)

	c, err = svc.RemoveItem(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Subtotal)
	assert.Equal(t, int64(4), c.Version)
}

// steppingClock advances one minute per call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestMutationsBumpVersionAndLastUpdated(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())
	svc.SetClock(steppingClock())

	c, err := svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Version)
	assert.False(t, c.LastUpdated.Before(c.CreatedAt))

	steps := []struct {
		name  string
		apply func() (*carts.Cart, error)
	}{
		{name: "add", apply: func() (*carts.Cart, error) { return svc.AddItem(ctx, "u1", dal) }},
		{name: "update", apply: func() (*carts.Cart, error) { return svc.UpdateQuantity(ctx, "u1", "r1", 5) }},
		{name: "remove", apply: func() (*carts.Cart, error) { return svc.RemoveItem(ctx, "u1", "r1") }},
		{name: "clear", apply: func() (*carts.Cart, error) { return svc.Clear(ctx, "u1") }},
	}
	prev := c
	for _, st := range steps {
		c, err := st.apply()
		require.NoError(t, err, st.name)
		assert.Equal(t, prev.Version+1, c.Version, st.name)
		assert.True(t, c.LastUpdated.After(prev.LastUpdated), st.name)
		assert.Equal(t, prev.CreatedAt, c.CreatedAt, st.name)
		prev = c
	}

	// no-op changes leave both untouched
	c, err = svc.RemoveItem(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, prev.Version, c.Version)
	assert.Equal(t, prev.LastUpdated, c.LastUpdated)

	prev, err = svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)
	c, err = svc.UpdateQuantity(ctx, "u1", "r1", 1)
	require.NoError(t, err)
	assert.Equal(t, prev.Version, c.Version)
	assert.Equal(t, prev.LastUpdated, c.LastUpdated)

	stored, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.Version, stored.Version)
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())

	increments := []int{0, 3, 1, 0, 2}
	want := 0
	for _, q := range increments {
		item := dal
		item.Quantity = q
		c, err := svc.AddItem(ctx, "u1", item)
		require.NoError(t, err)

		if q == 0 {
			q = 1
		}
		want += q
		assert.Equal(t, want, c.Items[0].Quantity)
		assert.Equal(t, int64(want)*dal.Price, c.Subtotal)
	}
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		itemID   string
		quantity int
		wantKind error
	}{
		{name: "zero quantity", userID: "u1", itemID: "r1", quantity: 0, wantKind: apperr.ErrValidation},
		{name: "negative quantity", userID: "u1", itemID: "r1", quantity: -2, wantKind: apperr.ErrValidation},
		{name: "missing item id", userID: "u1", quantity: 2, wantKind: apperr.ErrValidation},
		{name: "unknown item", userID: "u1", itemID: "nope", quantity: 2, wantKind: apperr.ErrNotFound},
		{name: "unknown cart", userID: "ghost", itemID: "r1", quantity: 2, wantKind: apperr.ErrNotFound},
		{name: "ok", userID: "u1", itemID: "r1", quantity: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := carts.NewService(memory.NewCartStore())
			before, err := svc.AddItem(ctx, "u1", dal)
			require.NoError(t, err)

			c, err := svc.UpdateQuantity(ctx, tc.userID, tc.itemID, tc.quantity)
			after, ferr := svc.Fetch(ctx, "u1")
			require.NoError(t, ferr)

			if tc.wantKind != nil {
				assert.ErrorIs(t, err, tc.wantKind)
				assert.Nil(t, c)
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.quantity, c.Items[0].Quantity)
			assert.Equal(t, int64(300), after.Subtotal)
		})
	}
}

func TestRemoveMissingItemIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())
	before, err := svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)

	c, err := svc.RemoveItem(ctx, "u1", "nope")
	require.NoError(t, err)
	assert.Equal(t, before.Items, c.Items)
	assert.Equal(t, before.Subtotal, c.Subtotal)
	assert.Equal(t, before.Version, c.Version)
}

func TestMissingCart(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())

	_, err := svc.Fetch(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Cart not found for this user", apperr.Message(err))

	_, err = svc.RemoveItem(ctx, "ghost", "r1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Clear(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearKeepsRecord(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())
	_, err := svc.Replace(ctx, "u1", []carts.Item{dal, {ID: "r2", Name: "Roti", Price: 30, Quantity: 4}})
	require.NoError(t, err)

	c, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Subtotal)

	c, err = svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
}

func TestReplaceNormalizesItems(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())

	c, err := svc.Replace(ctx, "u1", []carts.Item{
		{ID: "r1", Name: "Dal", Price: 100, Quantity: 2},
		{ID: "r2", Name: "Roti", Price: 30, Quantity: 0},
		{ID: "r1", Name: "Dal", Price: 100, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, int64(300), c.Subtotal)

	_, err = svc.Replace(ctx, "u1", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Replace(ctx, "u1", []carts.Item{{ID: "r1", Price: 10, Quantity: 1}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestConcurrentAddsAreAllApplied(t *testing.T) {
	ctx := context.Background()
	svc := carts.NewService(memory.NewCartStore())
	_, err := svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "u1", dal)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}

	c, err := svc.Fetch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1+ok, c.Items[0].Quantity)
	assert.Equal(t, int64(1+ok)*dal.Price, c.Subtotal)
}

// flakyStore loses the first conflicts writes to another writer.
type flakyStore struct {
	*memory.CartStore
	conflicts int
	updates   int
}

func (s *flakyStore) Update(ctx context.Context, c *carts.Cart, expected int64) error {
	s.updates++
	if s.conflicts > 0 {
		s.conflicts--
		return apperr.Conflict("flaky")
	}
	return s.CartStore.Update(ctx, c, expected)
}

func TestMutateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()

	store := &flakyStore{CartStore: memory.NewCartStore(), conflicts: 2}
	svc := carts.NewService(store)
	_, err := svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)

	c, err := svc.AddItem(ctx, "u1", dal)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 3, store.updates)

	store.conflicts = 10
	_, err = svc.AddItem(ctx, "u1", dal)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.True(t, errors.Is(err, apperr.ErrPersistence))
}
