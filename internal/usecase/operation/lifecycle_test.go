package operation

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/affiliate"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedOpen(t *testing.T, store *memory.Store, id, userID string, side domain.Direction) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateOperation(ctx, &domain.Operation{
		ID: id, UserID: userID, Symbol: "BTCUSDT", Side: side,
		EntryPrice: dec("45000"), Quantity: dec("0.1"), Leverage: 5,
		TakeProfit: dec("45900"), StopLoss: dec("44550"),
		Status: domain.OperationOpen, OpenedAt: baseTime,
	}))
	require.NoError(t, tx.Commit())
}

func seedActiveLink(t *testing.T, store *memory.Store, userID string) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.EnsureAffiliate(ctx, "aff-1"))
	require.NoError(t, tx.CreateLink(ctx, &domain.AffiliateLink{
		ID: "link-" + userID, AffiliateID: "aff-1", UserID: userID,
		Status: domain.LinkActive, CommissionEligible: true,
	}))
	require.NoError(t, tx.Commit())
}

func newLifecycle(store *memory.Store) *DefaultOperationLifecycle {
	lc := NewDefaultOperationLifecycle(store, store, affiliate.NewDefaultCommissionSettler(0.015), nil, nil, zap.NewNop())
	lc.Now = func() time.Time { return baseTime.Add(time.Hour) }
	return lc
}

func TestComputePnL(t *testing.T) {
	op := &domain.Operation{Side: domain.DirectionLong, EntryPrice: dec("45000"), Quantity: dec("0.1"), Leverage: 5}

	pnl, pct := ComputePnL(op, dec("47250"))
	assert.Equal(t, "1125", pnl.String())
	assert.Equal(t, "25", pct.String())

	op.Side = domain.DirectionShort
	pnl, pct = ComputePnL(op, dec("47250"))
	assert.Equal(t, "-1125", pnl.String())
	assert.Equal(t, "-25", pct.String())

	pnl, pct = ComputePnL(op, dec("42750"))
	assert.Equal(t, "1125", pnl.String())
	assert.Equal(t, "25", pct.String())
}

func TestCloseSettlesCommission(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOpen(t, store, "op-1", "u1", domain.DirectionLong)
	seedActiveLink(t, store, "u1")

	out, err := newLifecycle(store).Close(ctx, &operationdto.CloseInput{
		OperationID: "op-1", ExitPrice: dec("47250"), Reason: domain.CloseReasonManual,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Commission)
	assert.Equal(t, "16.875", out.Commission.Amount.String())

	stored, err := store.GetOperationByID(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OperationClosed, stored.Status)
	assert.Equal(t, "1125", stored.PnL.String())
	assert.Equal(t, "25", stored.PnLPercentage.String())
	assert.Equal(t, domain.CloseReasonManual, stored.CloseReason)
	require.NotNil(t, stored.ExitPrice)
	assert.Equal(t, "47250", stored.ExitPrice.String())
	require.NotNil(t, stored.ClosedAt)
	assert.Equal(t, baseTime.Add(time.Hour), *stored.ClosedAt)

	commissions, err := store.GetCommissionsByOperationID(ctx, "op-1")
	require.NoError(t, err)
	assert.Len(t, commissions, 1)
}

func TestCloseAlreadyClosed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOpen(t, store, "op-1", "u1", domain.DirectionLong)
	lc := newLifecycle(store)

	_, err := lc.Close(ctx, &operationdto.CloseInput{OperationID: "op-1", ExitPrice: dec("46000"), Reason: domain.CloseReasonSignal})
	require.NoError(t, err)

	_, err = lc.Close(ctx, &operationdto.CloseInput{OperationID: "op-1", ExitPrice: dec("47000"), Reason: domain.CloseReasonSignal})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	stored, err := store.GetOperationByID(ctx, "op-1")
	require.NoError(t, err)
	assert.Equal(t, "46000", stored.ExitPrice.String())
}

func TestCloseAtLossCreatesNoCommission(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOpen(t, store, "op-1", "u1", domain.DirectionLong)
	seedActiveLink(t, store, "u1")

	out, err := newLifecycle(store).Close(ctx, &operationdto.CloseInput{OperationID: "op-1", ExitPrice: dec("44000"), Reason: domain.CloseReasonStop})
	require.NoError(t, err)
	assert.Nil(t, out.Commission)
	assert.True(t, out.Operation.PnL.IsNegative())
	assert.Empty(t, store.Commissions())
}

func TestCloseUnknownOperation(t *testing.T) {
	_, err := newLifecycle(memory.NewStore()).Close(context.Background(), &operationdto.CloseInput{
		OperationID: "missing", ExitPrice: dec("1"), Reason: domain.CloseReasonManual,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
