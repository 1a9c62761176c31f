package signal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/affiliate"
	signaldto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/signal"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/operation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stubGate struct {
	reading *domain.SentimentReading
	checks  int
}

func (g *stubGate) Refresh(ctx context.Context) *domain.SentimentReading { return g.reading }
func (g *stubGate) Current(ctx context.Context) *domain.SentimentReading { return g.reading }
func (g *stubGate) CheckDirection(ctx context.Context, direction domain.Direction) *usecase.GateDecision {
	g.checks++
	return &usecase.GateDecision{Direction: direction, Allowed: g.reading.Allows(direction), Reading: g.reading}
}

type fixture struct {
	uc    *DefaultSignalUsecase
	store *memory.Store
	gate  *stubGate
}

func newFixture(t *testing.T, sentiment int) *fixture {
	t.Helper()
	store := memory.NewStore()
	users := memory.NewUserDirectory()
	users.PutTrader("u1", decimal.NewFromInt(1000))
	users.PutTrader("u2", decimal.NewFromInt(1000))

	clock := func() time.Time { return now }
	trading := config.Trading{
		MaxOpenOperations: 2, SymbolCooldown: 2 * time.Hour, MinTradeSize: 10,
		PositionSize: 100, Leverage: 5, TakeProfitPct: 2, StopLossPct: 1, Workers: 2,
	}
	checker := usecase.NewDefaultEligibilityChecker(store, trading)
	checker.Now = clock
	lifecycle := operation.NewDefaultOperationLifecycle(store, store, affiliate.NewDefaultCommissionSettler(0.015), nil, nil, nil)
	lifecycle.Now = clock
	orchestrator := operation.NewDefaultOperationOrchestrator(store, store, users, checker, lifecycle, store, nil, nil, nil, trading)
	orchestrator.Now = clock

	gate := &stubGate{reading: &domain.SentimentReading{
		Value:             sentiment,
		Classification:    "test",
		AllowedDirections: usecase.ClassifyDirections(sentiment, 30, 80),
	}}
	validator := NewDefaultSignalValidator(config.Signals{FreshnessWindow: 2 * time.Minute, FutureSkew: 30 * time.Second})
	uc := NewDefaultSignalUsecase(store, validator, gate, orchestrator, nil, store, nil, nil, zap.NewNop())
	uc.Now = clock
	return &fixture{uc: uc, store: store, gate: gate}
}

func price(s string) *decimal.Decimal {
	p := decimal.RequireFromString(s)
	return &p
}

func (f *fixture) process(t *testing.T, keyword string, ts time.Time) *signaldto.ProcessSignalOutput {
	t.Helper()
	out, err := f.uc.ProcessSignal(context.Background(), &signaldto.ProcessSignalInput{
		SignalKeyword: keyword, Symbol: "BTCUSDT", Price: price("100"), Timestamp: ts,
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) storedSignal(t *testing.T, id string) *domain.Signal {
	t.Helper()
	signal, err := f.store.GetSignalByID(context.Background(), id)
	require.NoError(t, err)
	return signal
}

func TestExpiredSignalOpensNothing(t *testing.T) {
	f := newFixture(t, 50)

	out := f.process(t, "SIGNAL LONG", now.Add(-121*time.Second))
	assert.Equal(t, signaldto.StatusExpired, out.Status)
	assert.False(t, out.Success)
	assert.Empty(t, f.store.Operations())
	assert.Zero(t, f.gate.checks)
	assert.Equal(t, domain.SignalExpired, f.storedSignal(t, out.SignalID).Status)
}

func TestSignalAtFreshnessBoundaryIsProcessed(t *testing.T) {
	f := newFixture(t, 50)

	out := f.process(t, "SIGNAL LONG", now.Add(-2*time.Minute))
	assert.Equal(t, signaldto.StatusProcessed, out.Status)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 2, out.Summary.OperationsOpened)
}

func TestInvalidKeywordIsRejectedAndStored(t *testing.T) {
	f := newFixture(t, 50)

	out := f.process(t, "BUY NOW", now)
	assert.Equal(t, signaldto.StatusRejected, out.Status)
	assert.Empty(t, f.store.Operations())

	stored := f.storedSignal(t, out.SignalID)
	assert.Equal(t, domain.SignalProcessed, stored.Status)
	assert.Contains(t, stored.ProcessingResult, "rejected:")
	assert.Equal(t, "BUY NOW", stored.Keyword)
}

func TestFutureTimestampIsInvalid(t *testing.T) {
	f := newFixture(t, 50)
	out := f.process(t, "SIGNAL LONG", now.Add(time.Minute))
	assert.Equal(t, signaldto.StatusRejected, out.Status)
}

func TestMissingSymbolIsInvalid(t *testing.T) {
	f := newFixture(t, 50)
	out, err := f.uc.ProcessSignal(context.Background(), &signaldto.ProcessSignalInput{SignalKeyword: "SIGNAL LONG", Timestamp: now})
	require.NoError(t, err)
	assert.Equal(t, signaldto.StatusRejected, out.Status)
}

func TestGateBlocksDirection(t *testing.T) {
	f := newFixture(t, 85)

	out := f.process(t, "SIGNAL LONG", now)
	assert.Equal(t, signaldto.StatusRejected, out.Status)
	assert.Contains(t, out.Detail, "blocked")
	assert.Empty(t, f.store.Operations())

	out = f.process(t, "SIGNAL SHORT", now)
	assert.Equal(t, signaldto.StatusProcessed, out.Status)
	assert.Equal(t, 2, out.Summary.OperationsOpened)
}

func TestConfirmSignalOnlyAudits(t *testing.T) {
	f := newFixture(t, 50)

	out := f.process(t, "CONFIRM LONG", now)
	assert.Equal(t, signaldto.StatusProcessed, out.Status)
	assert.True(t, out.Success)
	assert.Empty(t, f.store.Operations())
	assert.Zero(t, f.gate.checks)

	var audited bool
	for _, entry := range f.store.AuditLogs() {
		if entry.Category == domain.AuditSignal && entry.Subject == out.SignalID {
			audited = true
		}
	}
	assert.True(t, audited)
}

func TestCloseSignalClosesMatchingOperations(t *testing.T) {
	f := newFixture(t, 50)

	opened := f.process(t, "SIGNAL LONG", now)
	require.Equal(t, 2, opened.Summary.OperationsOpened)

	out, err := f.uc.ProcessSignal(context.Background(), &signaldto.ProcessSignalInput{
		SignalKeyword: "FECHE LONG", Symbol: "btc/usdt", Price: price("110"), Timestamp: now,
	})
	require.NoError(t, err)
	assert.Equal(t, signaldto.StatusProcessed, out.Status)
	assert.Equal(t, 2, out.Summary.OperationsClosed)

	for _, op := range f.store.Operations() {
		assert.Equal(t, domain.OperationClosed, op.Status)
		assert.Equal(t, domain.CloseReasonSignal, op.CloseReason)
		assert.True(t, op.PnL.IsPositive())
	}
}

func TestOpenWithoutPriceOrProviderIsError(t *testing.T) {
	f := newFixture(t, 50)
	out, err := f.uc.ProcessSignal(context.Background(), &signaldto.ProcessSignalInput{
		SignalKeyword: "SIGNAL LONG", Symbol: "BTCUSDT", Timestamp: now,
	})
	require.NoError(t, err)
	assert.Equal(t, signaldto.StatusError, out.Status)
	assert.Empty(t, f.store.Operations())
}

// cancellingStore cancels the caller's context as soon as the first
// transaction has begun.
type cancellingStore struct {
	domain.TradingStore
	cancel context.CancelFunc
	once   sync.Once
}

func (s *cancellingStore) BeginTx(ctx context.Context) (domain.TradingTx, error) {
	tx, err := s.TradingStore.BeginTx(ctx)
	s.once.Do(s.cancel)
	return tx, err
}

func TestCallerCancellationDoesNotAbortFanOut(t *testing.T) {
	store := memory.NewStore()
	users := memory.NewUserDirectory()
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		users.PutTrader(id, decimal.NewFromInt(1000))
	}
	clock := func() time.Time { return now }
	trading := config.Trading{
		MaxOpenOperations: 2, SymbolCooldown: 2 * time.Hour, MinTradeSize: 10,
		PositionSize: 100, Leverage: 5, TakeProfitPct: 2, StopLossPct: 1, Workers: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wrapped := &cancellingStore{TradingStore: store, cancel: cancel}

	checker := usecase.NewDefaultEligibilityChecker(store, trading)
	checker.Now = clock
	lifecycle := operation.NewDefaultOperationLifecycle(store, store, affiliate.NewDefaultCommissionSettler(0.015), nil, nil, nil)
	lifecycle.Now = clock
	orchestrator := operation.NewDefaultOperationOrchestrator(wrapped, store, users, checker, lifecycle, store, nil, nil, nil, trading)
	orchestrator.Now = clock
	gate := &stubGate{reading: &domain.SentimentReading{Value: 50, AllowedDirections: usecase.ClassifyDirections(50, 30, 80)}}
	validator := NewDefaultSignalValidator(config.Signals{FreshnessWindow: 2 * time.Minute, FutureSkew: 30 * time.Second})
	uc := NewDefaultSignalUsecase(store, validator, gate, orchestrator, nil, store, nil, nil, zap.NewNop())
	uc.Now = clock
	uc.Timeout = time.Minute

	out, err := uc.ProcessSignal(ctx, &signaldto.ProcessSignalInput{
		SignalKeyword: "SIGNAL LONG", Symbol: "BTCUSDT", Price: price("100"), Timestamp: now,
	})
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assert.Equal(t, signaldto.StatusProcessed, out.Status)
	require.NotNil(t, out.Summary)
	assert.Equal(t, 4, out.Summary.OperationsOpened)
	assert.Zero(t, out.Summary.Errors)
	assert.Len(t, store.Operations(), 4)

	stored, err := store.GetSignalByID(context.Background(), out.SignalID)
	require.NoError(t, err)
	assert.Equal(t, domain.SignalProcessed, stored.Status)
}
