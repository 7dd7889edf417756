package offer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/infrastructure/storage/memory"
)

// mockCache records calls and can be told to fail.
type mockCache struct {
	items       map[id.ID]offer.Offer
	gets        int
	invalidated []id.ID
	failGet     bool
}

func newMockCache() *mockCache { return &mockCache{items: map[id.ID]offer.Offer{}} }

func (m *mockCache) Get(_ context.Context, offerID id.ID) (*offer.Offer, bool, error) {
	m.gets++
	if m.failGet {
		return nil, false, errors.New("redis down")
	}
	o, ok := m.items[offerID]
	if !ok {
		return nil, false, nil
	}
	return &o, true, nil
}

func (m *mockCache) Set(_ context.Context, o *offer.Offer) error {
	m.items[o.ID] = *o
	return nil
}

func (m *mockCache) Invalidate(_ context.Context, ids ...id.ID) error {
	for _, v := range ids {
		delete(m.items, v)
	}
	m.invalidated = append(m.invalidated, ids...)
	return nil
}

func TestService_CreateStartsAtZeroStock(t *testing.T) {
	st := memory.NewStore()
	svc := offer.NewService(st.Offers(), st, nil)

	o := offer.NewOffer("SKU-9", "Mann", "W 712/75", types.MustMoney("540"), types.MustMoney("480"))
	o.Quantity = 1000
	require.NoError(t, svc.Create(context.Background(), o))

	got, err := svc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Quantity)

	dup := offer.NewOffer("SKU-9", "", "", types.Zero(), types.Zero())
	err = svc.Create(context.Background(), dup)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_ReadThroughCache(t *testing.T) {
	st := memory.NewStore()
	cache := newMockCache()
	svc := offer.NewService(st.Offers(), st, cache)
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "Bosch", "F 026 407 006", types.MustMoney("300"), types.MustMoney("250"))
	require.NoError(t, svc.Create(ctx, o))

	_, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.items, o.ID)

	// stock moves behind the cache's back, invalidation makes it visible
	_, err = st.Offers().AddQuantity(ctx, o.ID, 7)
	require.NoError(t, err)
	cached, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cached.Quantity)

	svc.Invalidate(ctx, o.ID)
	fresh, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), fresh.Quantity)
	assert.Equal(t, []id.ID{o.ID}, cache.invalidated)
}

func TestService_CacheFailureFallsBackToRepository(t *testing.T) {
	st := memory.NewStore()
	cache := newMockCache()
	cache.failGet = true
	svc := offer.NewService(st.Offers(), st, cache)
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "", "", types.MustMoney("1"), types.MustMoney("1"))
	require.NoError(t, svc.Create(ctx, o))

	got, err := svc.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, 1, cache.gets)
}

func TestService_UpdateNeverTouchesQuantity(t *testing.T) {
	st := memory.NewStore()
	cache := newMockCache()
	svc := offer.NewService(st.Offers(), st, cache)
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "Old", "", types.MustMoney("10"), types.MustMoney("8"))
	require.NoError(t, svc.Create(ctx, o))
	_, err := st.Offers().AddQuantity(ctx, o.ID, 4)
	require.NoError(t, err)

	brand := "New"
	price := types.MustMoney("12")
	updated, err := svc.Update(ctx, o.ID, offer.UpdateInput{Version: 1, Brand: &brand, PriceRub: &price})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Brand)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, int64(4), updated.Quantity)
	assert.Contains(t, cache.invalidated, o.ID)

	_, err = svc.Update(ctx, o.ID, offer.UpdateInput{Version: 1, Brand: &brand})
	assert.True(t, apperror.IsConcurrentModification(err))

	negative := types.MustMoney("-1")
	_, err = svc.Update(ctx, o.ID, offer.UpdateInput{PriceRub: &negative})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Update(ctx, id.New(), offer.UpdateInput{})
	assert.True(t, apperror.IsNotFound(err))
}
