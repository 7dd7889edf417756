package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/storage/memory"
)

func TestRecordMovements_Validation(t *testing.T) {
	svc := stock.NewService(memory.NewStore().Stock())
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, svc.RecordMovements(ctx, nil))

	bad := entity.NewStockMovement(id.New(), id.New(), id.New(), id.New(), entity.DirectionIn, 0, now)
	assert.True(t, apperror.IsValidation(svc.RecordMovements(ctx, []entity.StockMovement{bad})))

	noOffer := entity.NewStockMovement(id.New(), id.New(), id.Nil(), id.New(), entity.DirectionIn, 1, now)
	assert.True(t, apperror.IsValidation(svc.RecordMovements(ctx, []entity.StockMovement{noOffer})))

	unknownDir := entity.NewStockMovement(id.New(), id.New(), id.New(), id.New(), "SIDEWAYS", 1, now)
	assert.True(t, apperror.IsValidation(svc.RecordMovements(ctx, []entity.StockMovement{unknownDir})))
}

func TestHistoryAndTurnover(t *testing.T) {
	svc := stock.NewService(memory.NewStore().Stock())
	ctx := context.Background()

	offerID, other := id.New(), id.New()
	day := func(d int) time.Time { return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC) }

	movements := []entity.StockMovement{
		entity.NewStockMovement(id.New(), id.New(), offerID, id.New(), entity.DirectionIn, 10, day(1)),
		entity.NewStockMovement(id.New(), id.New(), offerID, id.New(), entity.DirectionOut, 4, day(5)),
		entity.NewStockMovement(id.New(), id.New(), offerID, id.New(), entity.DirectionReturn, 1, day(6)),
		entity.NewStockMovement(id.New(), id.New(), offerID, id.New(), entity.DirectionOut, 2, day(20)),
		entity.NewStockMovement(id.New(), id.New(), other, id.New(), entity.DirectionIn, 99, day(5)),
	}
	require.NoError(t, svc.RecordMovements(ctx, movements))

	hist, err := svc.GetHistory(ctx, offerID, stock.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.Equal(t, int64(2), hist[0].Quantity, "newest first")

	out := entity.DirectionOut
	hist, err = svc.GetHistory(ctx, offerID, stock.MovementFilter{Direction: &out})
	require.NoError(t, err)
	assert.Len(t, hist, 2)

	turnover, err := svc.GetTurnover(ctx, stock.TurnoverFilter{OfferID: &offerID, FromDate: day(2), ToDate: day(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), turnover.OpeningBalance)
	assert.Equal(t, int64(1), turnover.Incoming)
	assert.Equal(t, int64(4), turnover.Outgoing)
	assert.Equal(t, int64(7), turnover.ClosingBalance)

	_, err = svc.GetTurnover(ctx, stock.TurnoverFilter{FromDate: day(10), ToDate: day(2)})
	assert.True(t, apperror.IsValidation(err))
}
