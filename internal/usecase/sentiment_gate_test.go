package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSentimentSource struct {
	value int
	err   error
	calls int
}

func (s *stubSentimentSource) FetchIndex(ctx context.Context) (*domain.SentimentIndex, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.SentimentIndex{Value: s.value, Classification: "Test", Timestamp: time.Now()}, nil
}

func (s *stubSentimentSource) Name() string { return "stub" }

func sentimentConfig() config.Sentiment {
	return config.Sentiment{LongBelow: 30, ShortAbove: 80, LegacyShortAbove: 70, Timeout: time.Second}
}

func TestClassifyDirectionsBoundaries(t *testing.T) {
	long := []domain.Direction{domain.DirectionLong}
	both := []domain.Direction{domain.DirectionLong, domain.DirectionShort}
	short := []domain.Direction{domain.DirectionShort}

	cases := []struct {
		value int
		want  []domain.Direction
	}{
		{0, long},
		{29, long},
		{30, both},
		{50, both},
		{80, both},
		{81, short},
		{100, short},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyDirections(tc.value, 30, 80), "value %d", tc.value)
	}
}

func TestGateRefreshStoresReading(t *testing.T) {
	store := memory.NewStore()
	src := &stubSentimentSource{value: 81}
	gate := NewDefaultSentimentGate(src, store, store, nil, zap.NewNop(), sentimentConfig())

	reading := gate.Refresh(context.Background())
	assert.Equal(t, 81, reading.Value)
	assert.Equal(t, []domain.Direction{domain.DirectionShort}, reading.AllowedDirections)

	latest, err := store.LatestReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reading.ID, latest.ID)

	assert.False(t, gate.CheckDirection(context.Background(), domain.DirectionLong).Allowed)
	assert.True(t, gate.CheckDirection(context.Background(), domain.DirectionShort).Allowed)
}

func TestGateFallsBackOnSourceFailure(t *testing.T) {
	store := memory.NewStore()
	src := &stubSentimentSource{err: errors.New("connection refused")}
	gate := NewDefaultSentimentGate(src, store, store, nil, zap.NewNop(), sentimentConfig())

	reading := gate.Refresh(context.Background())
	assert.Equal(t, FallbackSentimentValue, reading.Value)
	assert.Equal(t, FallbackSentimentSource, reading.Source)
	assert.Contains(t, reading.Note, "connection refused")

	decision := gate.CheckDirection(context.Background(), domain.DirectionLong)
	assert.True(t, decision.Allowed)
	assert.Equal(t, reading.ID, decision.Reading.ID)
}

func TestGateBlocksUndefinedDirection(t *testing.T) {
	store := memory.NewStore()
	gate := NewDefaultSentimentGate(&stubSentimentSource{value: 50}, store, store, nil, zap.NewNop(), sentimentConfig())
	gate.Refresh(context.Background())

	decision := gate.CheckDirection(context.Background(), domain.DirectionUndefined)
	assert.False(t, decision.Allowed)
}

func TestGateCurrentDoesNotCallSource(t *testing.T) {
	store := memory.NewStore()
	src := &stubSentimentSource{value: 10}
	gate := NewDefaultSentimentGate(src, store, store, nil, zap.NewNop(), sentimentConfig())

	reading := gate.Current(context.Background())
	assert.Equal(t, FallbackSentimentValue, reading.Value)
	assert.Zero(t, src.calls)
}

func TestGateCurrentLoadsPersistedReading(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.SaveReading(context.Background(), &domain.SentimentReading{
		ID: "r1", Value: 20, AllowedDirections: []domain.Direction{domain.DirectionLong}, CapturedAt: time.Now(),
	}))
	gate := NewDefaultSentimentGate(&stubSentimentSource{value: 90}, store, store, nil, zap.NewNop(), sentimentConfig())

	assert.Equal(t, "r1", gate.Current(context.Background()).ID)
}

func TestGateWritesAuditLog(t *testing.T) {
	store := memory.NewStore()
	gate := NewDefaultSentimentGate(&stubSentimentSource{value: 15}, store, store, nil, zap.NewNop(), sentimentConfig())
	gate.Refresh(context.Background())

	gate.CheckDirection(context.Background(), domain.DirectionShort)

	logs := store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditSentimentGate, logs[0].Category)
	assert.Equal(t, "blocked", logs[0].Outcome)
	assert.Equal(t, "SHORT", logs[0].Subject)
}
