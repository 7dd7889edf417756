package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/outbox"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/domain/documents/waybill"
)

func TestRunInTransaction_RollbackRestoresState(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "", "", types.MustMoney("1"), types.MustMoney("1"))
	require.NoError(t, st.Offers().Create(ctx, o))

	boom := errors.New("boom")
	err := st.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := st.Offers().AddQuantity(ctx, o.ID, 5); err != nil {
			return err
		}
		if err := st.Outbox().Publish(ctx, outbox.DomainEvent{EventType: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := st.Offers().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Quantity)
	assert.Empty(t, st.Outbox().Events())
}

func TestRunInTransaction_PanicRestoresState(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "", "", types.MustMoney("1"), types.MustMoney("1"))
	require.NoError(t, st.Offers().Create(ctx, o))

	assert.Panics(t, func() {
		_ = st.RunInTransaction(ctx, func(ctx context.Context) error {
			_, _ = st.Offers().AddQuantity(ctx, o.ID, 3)
			panic("unexpected")
		})
	})

	got, err := st.Offers().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Quantity)
}

func TestRunInTransaction_NestedJoinsOuter(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "", "", types.MustMoney("1"), types.MustMoney("1"))
	require.NoError(t, st.Offers().Create(ctx, o))

	err := st.RunInTransaction(ctx, func(ctx context.Context) error {
		return st.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := st.Offers().AddQuantity(ctx, o.ID, 2)
			return err
		})
	})
	require.NoError(t, err)

	got, err := st.Offers().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Quantity)
}

func TestPublish_RequiresTransaction(t *testing.T) {
	st := NewStore()
	err := st.Outbox().Publish(context.Background(), outbox.DomainEvent{EventType: "x"})
	assert.Error(t, err)
}

func TestBalanceCreate_RejectsUnknownWaybill(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	u := user.NewUser("c@example.com", "Customer", entity.CustomerRetail)
	require.NoError(t, st.Users().Create(ctx, u))

	missing := id.New()
	err := st.Balances().Create(ctx, &entity.BalanceHistory{
		ID:        id.New(),
		UserID:    u.ID,
		WaybillID: &missing,
		Delta:     100,
		Currency:  entity.CurrencyRUB,
		Reason:    entity.ReasonWaybillPayment,
		CreatedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	w := waybill.NewWaybill(id.New(), u.ID, entity.DirectionOut, "")
	require.NoError(t, st.Waybills().Create(ctx, w))
	require.NoError(t, st.Balances().Create(ctx, &entity.BalanceHistory{
		ID:        id.New(),
		UserID:    u.ID,
		WaybillID: &w.ID,
		Delta:     100,
		Currency:  entity.CurrencyRUB,
		Reason:    entity.ReasonWaybillPayment,
		CreatedAt: time.Now().UTC(),
	}))
}

func TestAddBalance_OverflowIsValidation(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	u := user.NewUser("c@example.com", "Customer", entity.CustomerRetail)
	require.NoError(t, st.Users().Create(ctx, u))

	after, err := st.Users().AddBalance(ctx, u.ID, entity.CurrencyUSD, math.MaxInt64)
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), after)

	_, err = st.Users().AddBalance(ctx, u.ID, entity.CurrencyUSD, 1)
	assert.True(t, apperror.IsValidation(err))

	_, err = st.Users().AddBalance(ctx, u.ID, entity.CurrencyEUR, math.MinInt64)
	require.NoError(t, err)
	_, err = st.Users().AddBalance(ctx, u.ID, entity.CurrencyEUR, -1)
	assert.True(t, apperror.IsValidation(err))

	got, err := st.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got.Balance(entity.CurrencyUSD))
	assert.Equal(t, int64(math.MinInt64), got.Balance(entity.CurrencyEUR))
}

func TestAddQuantity_OverflowIsValidation(t *testing.T) {
	st := NewStore()
	ctx := context.Background()

	o := offer.NewOffer("SKU-1", "", "", types.MustMoney("1"), types.MustMoney("1"))
	require.NoError(t, st.Offers().Create(ctx, o))

	_, err := st.Offers().AddQuantity(ctx, o.ID, math.MaxInt64-1)
	require.NoError(t, err)

	_, err = st.Offers().AddQuantity(ctx, o.ID, 2)
	assert.True(t, apperror.IsValidation(err))

	after, err := st.Offers().AddQuantity(ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), after)
}
