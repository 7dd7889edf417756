package waybill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/offer"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/domain/documents/waybill"
	"backoffice/internal/infrastructure/storage/memory"
)

type env struct {
	store  *memory.Store
	svc    *waybill.Service
	offers *offer.Service
	author id.ID
}

func newEnv(t *testing.T, cfg waybill.ServiceConfig) *env {
	t.Helper()
	st := memory.NewStore()
	return &env{
		store:  st,
		svc:    waybill.NewService(st.Waybills(), st.Offers(), st.Users(), st, cfg),
		offers: offer.NewService(st.Offers(), st, nil),
		author: id.New(),
	}
}

func (e *env) customer(t *testing.T, email string, ct entity.CustomerType) *user.User {
	t.Helper()
	u := user.NewUser(email, "Customer", ct)
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func (e *env) offer(t *testing.T, sku, price, superWholesale string) *offer.Offer {
	t.Helper()
	o := offer.NewOffer(sku, "Brembo", "09.A820.11", types.MustMoney(price), types.MustMoney(superWholesale))
	require.NoError(t, e.offers.Create(context.Background(), o))
	return o
}

func (e *env) pending(t *testing.T, customer *user.User) *waybill.Waybill {
	t.Helper()
	w := waybill.NewWaybill(e.author, customer.ID, entity.DirectionOut, "shipment")
	require.NoError(t, e.svc.Create(context.Background(), w))
	return w
}

func TestCreate_StartsPendingAndEmpty(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	w := e.pending(t, c)

	got, err := e.svc.GetByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending)
	assert.Empty(t, got.Lines)
	assert.Equal(t, e.author, got.AuthorID)
	assert.Nil(t, got.CommittedAt)
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	ctx := context.Background()

	err := e.svc.Create(ctx, waybill.NewWaybill(e.author, c.ID, "SIDEWAYS", ""))
	assert.True(t, apperror.IsValidation(err))

	err = e.svc.Create(ctx, waybill.NewWaybill(id.Nil(), c.ID, entity.DirectionIn, ""))
	assert.True(t, apperror.IsValidation(err))

	err = e.svc.Create(ctx, waybill.NewWaybill(e.author, id.New(), entity.DirectionIn, ""))
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_OrderIDIsUnique(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	ctx := context.Background()
	order := "ORD-1"

	first := waybill.NewWaybill(e.author, c.ID, entity.DirectionOut, "")
	first.OrderID = &order
	require.NoError(t, e.svc.Create(ctx, first))

	second := waybill.NewWaybill(e.author, c.ID, entity.DirectionOut, "")
	second.OrderID = &order
	err := e.svc.Create(ctx, second)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestAddLine_SnapshotsOffer(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU-1", "1200", "1000")
	w := e.pending(t, c)
	ctx := context.Background()

	l, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, l.LineNo)
	assert.Equal(t, "Brembo", l.Brand)
	assert.Equal(t, "09.A820.11", l.ManufacturerNumber)
	assert.True(t, l.PriceRub.Equal(types.MustMoney("1200")))

	// later catalog edits do not reach existing lines
	newPrice := types.MustMoney("1500")
	newBrand := "ATE"
	_, err = e.offers.Update(ctx, o.ID, offer.UpdateInput{PriceRub: &newPrice, Brand: &newBrand})
	require.NoError(t, err)

	got, err := e.svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Brembo", got.Lines[0].Brand)
	assert.True(t, got.Lines[0].PriceRub.Equal(types.MustMoney("1200")))
	assert.True(t, got.Total().Equal(types.MustMoney("3600")))

	second, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, second.LineNo)
	assert.Equal(t, "ATE", second.Brand)
}

func TestAddLine_PriceByCustomerType(t *testing.T) {
	tests := []struct {
		ct   entity.CustomerType
		want string
	}{
		{entity.CustomerRetail, "1000"},
		{entity.CustomerWholesale, "900"},
		{entity.CustomerSuperWholesale, "800"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			e := newEnv(t, waybill.ServiceConfig{})
			c := e.customer(t, "c@example.com", tt.ct)
			o := e.offer(t, "SKU", "1000", "800")
			w := e.pending(t, c)

			l, err := e.svc.AddLine(context.Background(), w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
			require.NoError(t, err)
			assert.True(t, l.PriceRub.Equal(types.MustMoney(tt.want)), "got %s", l.PriceRub)
		})
	}
}

func TestAddLine_ExplicitSnapshotWins(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerSuperWholesale)
	o := e.offer(t, "SKU", "1000", "800")
	w := e.pending(t, c)

	price := types.MustMoney("777.5")
	brand := " Custom "
	l, err := e.svc.AddLine(context.Background(), w.ID, waybill.AddLineInput{
		OfferID: o.ID, Quantity: 2, PriceRub: &price, Brand: &brand,
	})
	require.NoError(t, err)
	assert.True(t, l.PriceRub.Equal(price))
	assert.Equal(t, "Custom", l.Brand)
	assert.Equal(t, "09.A820.11", l.ManufacturerNumber)
}

func TestAddLine_Rejections(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU", "10", "5")
	w := e.pending(t, c)
	ctx := context.Background()

	_, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 0})
	assert.True(t, apperror.IsValidation(err))

	_, err = e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: -2})
	assert.True(t, apperror.IsValidation(err))

	_, err = e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: id.New(), Quantity: 1})
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.svc.AddLine(ctx, id.New(), waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	assert.True(t, apperror.IsNotFound(err))

	got, err := e.svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}

func TestAddLine_CommittedWaybillIsInvalidState(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU", "10", "5")
	w := e.pending(t, c)
	ctx := context.Background()

	ok, err := e.store.Waybills().MarkCommitted(ctx, w.ID, e.author, w.CreatedAt)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	got, err := e.svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}

func TestAddLine_LegacyModeAcceptsCommitted(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{AllowLinesOnCommitted: true})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU", "10", "5")
	w := e.pending(t, c)
	ctx := context.Background()

	_, err := e.store.Waybills().MarkCommitted(ctx, w.ID, e.author, w.CreatedAt)
	require.NoError(t, err)

	_, err = e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	require.NoError(t, err)

	stored, err := e.store.Offers().GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Quantity)
}

func TestRemoveLine_DeletesFromPending(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU", "10", "5")
	w := e.pending(t, c)
	ctx := context.Background()

	first, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	require.NoError(t, err)
	second, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 4})
	require.NoError(t, err)

	require.NoError(t, e.svc.RemoveLine(ctx, w.ID, first.ID))

	got, err := e.svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, second.ID, got.Lines[0].ID)

	// numbering continues after the highest remaining line
	third, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, third.LineNo)
}

func TestRemoveLine_UnknownLineIsNotFound(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU", "10", "5")
	w := e.pending(t, c)
	other := e.pending(t, c)
	ctx := context.Background()

	l, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 1})
	require.NoError(t, err)

	assert.True(t, apperror.IsNotFound(e.svc.RemoveLine(ctx, w.ID, id.New())))
	assert.True(t, apperror.IsNotFound(e.svc.RemoveLine(ctx, other.ID, l.ID)))
	assert.True(t, apperror.IsNotFound(e.svc.RemoveLine(ctx, id.New(), l.ID)))

	got, err := e.svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestRemoveLine_CommittedWaybillIsInvalidState(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		e := newEnv(t, waybill.ServiceConfig{AllowLinesOnCommitted: legacy})
		c := e.customer(t, "c@example.com", entity.CustomerRetail)
		o := e.offer(t, "SKU", "10", "5")
		w := e.pending(t, c)
		ctx := context.Background()

		l, err := e.svc.AddLine(ctx, w.ID, waybill.AddLineInput{OfferID: o.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = e.store.Waybills().MarkCommitted(ctx, w.ID, e.author, w.CreatedAt)
		require.NoError(t, err)

		err = e.svc.RemoveLine(ctx, w.ID, l.ID)
		assert.True(t, apperror.IsInvalidState(err), "legacy=%v: %v", legacy, err)

		got, err := e.svc.GetByID(ctx, w.ID)
		require.NoError(t, err)
		assert.Len(t, got.Lines, 1)
	}
}

// countingTx records read-only units of work.
type countingTx struct {
	*memory.Store
	readOnly int
}

func (c *countingTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	c.readOnly++
	return c.Store.ReadOnly(ctx, fn)
}

func TestGetByID_ReadsInReadOnlyUnit(t *testing.T) {
	st := memory.NewStore()
	txm := &countingTx{Store: st}
	svc := waybill.NewService(st.Waybills(), st.Offers(), st.Users(), txm, waybill.ServiceConfig{})
	ctx := context.Background()

	u := user.NewUser("c@example.com", "Customer", entity.CustomerRetail)
	require.NoError(t, st.Users().Create(ctx, u))
	w := waybill.NewWaybill(id.New(), u.ID, entity.DirectionIn, "")
	require.NoError(t, svc.Create(ctx, w))

	_, err := svc.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, txm.readOnly)

	_, err = svc.GetByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 2, txm.readOnly)
}

func TestCreateWithLines_IsAtomic(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c := e.customer(t, "c@example.com", entity.CustomerRetail)
	o := e.offer(t, "SKU", "10", "5")
	ctx := context.Background()

	w := waybill.NewWaybill(e.author, c.ID, entity.DirectionIn, "")
	_, err := e.svc.CreateWithLines(ctx, w, []waybill.AddLineInput{
		{OfferID: o.ID, Quantity: 1},
		{OfferID: o.ID, Quantity: 0},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = e.svc.GetByID(ctx, w.ID)
	assert.True(t, apperror.IsNotFound(err))

	ok := waybill.NewWaybill(e.author, c.ID, entity.DirectionIn, "")
	created, err := e.svc.CreateWithLines(ctx, ok, []waybill.AddLineInput{
		{OfferID: o.ID, Quantity: 1},
		{OfferID: o.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, created.Lines, 2)
	assert.Equal(t, []int{1, 2}, []int{created.Lines[0].LineNo, created.Lines[1].LineNo})
}

func TestList_Filters(t *testing.T) {
	e := newEnv(t, waybill.ServiceConfig{})
	c1 := e.customer(t, "one@example.com", entity.CustomerRetail)
	c2 := e.customer(t, "two@example.com", entity.CustomerRetail)
	ctx := context.Background()

	for _, spec := range []struct {
		customer *user.User
		dir      entity.Direction
		note     string
	}{
		{c1, entity.DirectionIn, "supplier delivery"},
		{c1, entity.DirectionOut, "order 15"},
		{c2, entity.DirectionOut, "order 16"},
	} {
		require.NoError(t, e.svc.Create(ctx, waybill.NewWaybill(e.author, spec.customer.ID, spec.dir, spec.note)))
	}

	out := entity.DirectionOut
	res, err := e.svc.List(ctx, waybill.ListFilter{WaybillType: &out})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	assert.Equal(t, "order 16", res.Items[0].Note)

	res, err = e.svc.List(ctx, waybill.ListFilter{CustomerID: &c1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)

	res, err = e.svc.List(ctx, waybill.ListFilter{ListFilter: domain.ListFilter{Search: "DELIVERY"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.DirectionIn, res.Items[0].WaybillType)

	res, err = e.svc.List(ctx, waybill.ListFilter{ListFilter: domain.ListFilter{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, int64(3), res.TotalCount)
}
