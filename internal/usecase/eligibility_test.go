package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func tradingConfig() config.Trading {
	return config.Trading{MaxOpenOperations: 2, SymbolCooldown: 2 * time.Hour, MinTradeSize: 10}
}

func seedOperation(t *testing.T, store *memory.Store, id, userID, symbol string, openedAt time.Time, status domain.OperationStatus) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	op := &domain.Operation{
		ID: id, UserID: userID, Symbol: symbol, Side: domain.DirectionLong,
		EntryPrice: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1), Leverage: 5,
		Status: domain.OperationOpen, OpenedAt: openedAt,
	}
	require.NoError(t, tx.CreateOperation(ctx, op))
	if status == domain.OperationClosed {
		closedAt := openedAt.Add(time.Minute)
		op.Status = domain.OperationClosed
		op.ClosedAt = &closedAt
		require.NoError(t, tx.CloseOperation(ctx, op))
	}
	require.NoError(t, tx.Commit())
}

func newChecker(store *memory.Store, now time.Time) *DefaultEligibilityChecker {
	c := NewDefaultEligibilityChecker(store, tradingConfig())
	c.Now = func() time.Time { return now }
	return c
}

func trader(id string, balance int64) domain.Trader {
	return domain.Trader{UserID: id, AvailableBalance: decimal.NewFromInt(balance)}
}

func TestEligibilityAllowsFreshUser(t *testing.T) {
	store := memory.NewStore()
	res, err := newChecker(store, baseTime).CanOpen(context.Background(), trader("u1", 100), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestEligibilityMaxOperationsReached(t *testing.T) {
	store := memory.NewStore()
	seedOperation(t, store, "op-1", "u1", "BTCUSDT", baseTime.Add(-5*time.Hour), domain.OperationOpen)
	seedOperation(t, store, "op-2", "u1", "ETHUSDT", baseTime.Add(-5*time.Hour), domain.OperationOpen)

	res, err := newChecker(store, baseTime).CanOpen(context.Background(), trader("u1", 100), "SOLUSDT")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonMaxOperationsReached, res.ReasonCode)
}

func TestEligibilityIntervalNotReachedCountsClosedOperations(t *testing.T) {
	store := memory.NewStore()
	seedOperation(t, store, "op-1", "u1", "BTCUSDT", baseTime.Add(-90*time.Minute-30*time.Second), domain.OperationClosed)

	res, err := newChecker(store, baseTime).CanOpen(context.Background(), trader("u1", 100), "BTCUSDT")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonIntervalNotReached, res.ReasonCode)
	assert.Equal(t, int64(30), res.MinutesRemaining)

	other, err := newChecker(store, baseTime).CanOpen(context.Background(), trader("u1", 100), "ETHUSDT")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestEligibilityIntervalBoundary(t *testing.T) {
	store := memory.NewStore()
	seedOperation(t, store, "op-1", "u1", "BTCUSDT", baseTime.Add(-2*time.Hour), domain.OperationClosed)

	res, err := newChecker(store, baseTime).CanOpen(context.Background(), trader("u1", 100), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestEligibilityInsufficientBalance(t *testing.T) {
	store := memory.NewStore()
	res, err := newChecker(store, baseTime).CanOpen(context.Background(), trader("u1", 5), "BTCUSDT")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, domain.ReasonInsufficientBalance, res.ReasonCode)
	assert.True(t, res.Required.Equal(decimal.NewFromInt(10)))
	assert.True(t, res.Available.Equal(decimal.NewFromInt(5)))
}

func TestEligibilityChecksInOrder(t *testing.T) {
	store := memory.NewStore()
	seedOperation(t, store, "op-1", "u1", "BTCUSDT", baseTime.Add(-time.Minute), domain.OperationOpen)
	seedOperation(t, store, "op-2", "u1", "ETHUSDT", baseTime.Add(-time.Minute), domain.OperationOpen)

	tx, err := store.BeginTx(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	err = newChecker(store, baseTime).Evaluate(context.Background(), tx, trader("u1", 1), "BTCUSDT")
	assert.True(t, errors.Is(err, domain.ErrMaxOperationsReached))
}
