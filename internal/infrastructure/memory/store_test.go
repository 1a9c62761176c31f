package memory

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openOperation(id, userID, symbol string, openedAt time.Time) *domain.Operation {
	return &domain.Operation{
		ID:         id,
		UserID:     userID,
		Symbol:     symbol,
		Side:       domain.DirectionLong,
		EntryPrice: decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(1),
		Leverage:   5,
		Status:     domain.OperationOpen,
		OpenedAt:   openedAt,
	}
}

func TestRollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.EnsureAffiliate(ctx, "aff-1"))
	require.NoError(t, tx.CreateOperation(ctx, openOperation("op-1", "u1", "BTCUSDT", time.Now())))
	require.NoError(t, tx.AddAffiliateTotals(ctx, "aff-1", decimal.NewFromInt(3)))
	require.NoError(t, tx.Rollback())

	_, err = s.GetOperationByID(ctx, "op-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetAffiliateByID(ctx, "aff-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the store is usable again after rollback
	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.EnsureAffiliate(ctx, "aff-1"))
	require.NoError(t, tx.AddAffiliateTotals(ctx, "aff-1", decimal.NewFromInt(3)))
	require.NoError(t, tx.Commit())

	affiliate, err := s.GetAffiliateByID(ctx, "aff-1")
	require.NoError(t, err)
	assert.True(t, affiliate.TotalCommission.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int64(1), affiliate.CommissionCount)
}

func TestCloseOperationRejectsClosedRow(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	tx, _ := s.BeginTx(ctx)
	require.NoError(t, tx.CreateOperation(ctx, openOperation("op-1", "u1", "BTCUSDT", now)))
	op, err := tx.GetOperationForUpdate(ctx, "op-1")
	require.NoError(t, err)
	op.Status = domain.OperationClosed
	op.ClosedAt = &now
	require.NoError(t, tx.CloseOperation(ctx, op))
	assert.ErrorIs(t, tx.CloseOperation(ctx, op), domain.ErrAlreadyClosed)
	require.NoError(t, tx.Commit())
}

func TestLastOpenedAtCoversClosedOperations(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tx, _ := s.BeginTx(ctx)
	require.NoError(t, tx.CreateOperation(ctx, openOperation("op-1", "u1", "BTCUSDT", base)))
	closed := openOperation("op-2", "u1", "BTCUSDT", base.Add(time.Hour))
	require.NoError(t, tx.CreateOperation(ctx, closed))
	closed.Status = domain.OperationClosed
	require.NoError(t, tx.CloseOperation(ctx, closed))

	last, err := tx.LastOpenedAt(ctx, "u1", "BTCUSDT")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(base.Add(time.Hour)))

	count, err := tx.CountOpenOperations(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	none, err := tx.LastOpenedAt(ctx, "u1", "ETHUSDT")
	require.NoError(t, err)
	assert.Nil(t, none)
	require.NoError(t, tx.Commit())
}

func TestPurgeSentimentKeepsLatest(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	old := time.Now().Add(-30 * 24 * time.Hour)

	require.NoError(t, s.SaveReading(ctx, &domain.SentimentReading{ID: "r1", Value: 40, CapturedAt: old}))
	require.NoError(t, s.SaveReading(ctx, &domain.SentimentReading{ID: "r2", Value: 45, CapturedAt: old.Add(time.Minute)}))

	n, err := s.PurgeSentimentReadings(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	latest, err := s.LatestReading(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r2", latest.ID)
}

func TestPurgeClosedOperationsSkipsPendingCommissions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	closedAt := time.Now().Add(-60 * 24 * time.Hour)

	tx, _ := s.BeginTx(ctx)
	for _, id := range []string{"op-1", "op-2"} {
		op := openOperation(id, "u1", "BTCUSDT", closedAt.Add(-time.Hour))
		require.NoError(t, tx.CreateOperation(ctx, op))
		op.Status = domain.OperationClosed
		op.ClosedAt = &closedAt
		require.NoError(t, tx.CloseOperation(ctx, op))
	}
	require.NoError(t, tx.EnsureAffiliate(ctx, "aff-1"))
	require.NoError(t, tx.CreateCommission(ctx, &domain.Commission{
		ID: "c1", AffiliateID: "aff-1", UserID: "u1", OperationID: "op-1",
		Status: domain.CommissionPending, CreatedAt: closedAt, UpdatedAt: closedAt,
	}))
	require.NoError(t, tx.Commit())

	now := time.Now()
	n, err := s.PurgeClosedOperations(ctx, now.Add(-7*24*time.Hour), now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetOperationByID(ctx, "op-1")
	assert.NoError(t, err)
	_, err = s.GetOperationByID(ctx, "op-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	again, err := s.PurgeClosedOperations(ctx, now.Add(-7*24*time.Hour), now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestFinalizeSignalOnlyFromReceived(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateSignal(ctx, &domain.Signal{ID: "s1", Status: domain.SignalReceived, ReceivedAt: time.Now()}))

	ok, err := s.FinalizeSignal(ctx, "s1", domain.SignalProcessed, "opened 1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.FinalizeSignal(ctx, "s1", domain.SignalExpired, "late")
	require.NoError(t, err)
	assert.False(t, ok)

	signal, err := s.GetSignalByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SignalProcessed, signal.Status)
	assert.Equal(t, "opened 1", signal.ProcessingResult)
}
