package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growteq/storefront/cart"
	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/storefront"
)

type flakyStore struct {
	*localstore.MemoryStore
	failing bool
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failing {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func line(productID string) cart.Line {
	return cart.Line{
		ProductID:    productID,
		Name:         productID,
		Size:         &cart.SizeSelection{ID: "medium"},
		Quantity:     60,
		RequiredDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegistry_ReusesOpenSession(t *testing.T) {
	r, err := NewRegistry(localstore.NewMemoryStore(), 4, nil)
	require.NoError(t, err)

	a, err := r.Get(context.Background(), "u1")
	require.NoError(t, err)
	b, err := r.Get(context.Background(), "u1")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RequiresUser(t *testing.T) {
	r, err := NewRegistry(localstore.NewMemoryStore(), 4, nil)
	require.NoError(t, err)

	_, err = r.Cart(context.Background(), "")

	var cmdErr *storefront.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, storefront.StatusInvalidArgument, cmdErr.Code)
}

func TestRegistry_SeparatesUsers(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(localstore.NewMemoryStore(), 4, nil)
	require.NoError(t, err)

	c1, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, c1.AddOrReplace(ctx, line("rose-red")))
	c2, err := r.Cart(ctx, "u2")
	require.NoError(t, err)

	assert.Equal(t, 1, c1.LineCount())
	assert.Equal(t, 0, c2.LineCount())
}

func TestRegistry_EvictedCartReloadsFromStorage(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(localstore.NewMemoryStore(), 1, nil)
	require.NoError(t, err)

	c1, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, c1.AddOrReplace(ctx, line("rose-red")))

	_, err = r.Cart(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	reopened, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.NotSame(t, c1, reopened)
	assert.Equal(t, c1.Lines(), reopened.Lines())
}

func TestRegistry_EvictionFlushesDirtyCart(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStore{MemoryStore: localstore.NewMemoryStore()}
	r, err := NewRegistry(storage, 1, nil)
	require.NoError(t, err)

	c1, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	storage.failing = true
	var persistErr *cart.PersistenceError
	require.ErrorAs(t, c1.AddOrReplace(ctx, line("rose-red")), &persistErr)
	require.True(t, c1.Dirty())

	storage.failing = false
	_, err = r.Cart(ctx, "u2")
	require.NoError(t, err)

	assert.False(t, c1.Dirty())
	reopened, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.LineCount())
}

func TestRegistry_CloseFlushes(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStore{MemoryStore: localstore.NewMemoryStore()}
	r, err := NewRegistry(storage, 4, nil)
	require.NoError(t, err)

	c, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	storage.failing = true
	_ = c.AddOrReplace(ctx, line("rose-red"))
	storage.failing = false

	r.Close()

	assert.False(t, c.Dirty())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_EvictedCartRejectsLateWrites(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(localstore.NewMemoryStore(), 1, nil)
	require.NoError(t, err)

	stale, err := r.Cart(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, stale.AddOrReplace(ctx, line("rose-red")))
	_, err = r.Cart(ctx, "u2")
	require.NoError(t, err)
	current, err := r.Cart(ctx, "u1")
	require.NoError(t, err)

	err = stale.AddOrReplace(ctx, line("rose-white"))

	var cmdErr *storefront.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, storefront.StatusUnavailable, cmdErr.Code)
	assert.True(t, stale.Closed())

	require.NoError(t, current.AddOrReplace(ctx, line("carnation")))
	assert.Equal(t, 2, current.LineCount())
}
