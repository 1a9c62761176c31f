package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FallbackSentimentValue  = 50
	FallbackSentimentSource = "fallback"
)

type SentimentGate interface {
	Refresh(ctx context.Context) *domain.SentimentReading
	Current(ctx context.Context) *domain.SentimentReading
	CheckDirection(ctx context.Context, direction domain.Direction) *GateDecision
}

type GateDecision struct {
	Direction domain.Direction
	Allowed   bool
	Reading   *domain.SentimentReading
}

type DefaultSentimentGate struct {
	Source  domain.SentimentSource
	Repo    domain.SentimentRepository
	Audit   domain.AuditRepository
	Metrics *metrics.SignalMetrics
	Log     *zap.Logger
	Cfg     config.Sentiment
	Now     func() time.Time

	mu      sync.RWMutex
	current *domain.SentimentReading
}

func NewDefaultSentimentGate(
	source domain.SentimentSource,
	repo domain.SentimentRepository,
	audit domain.AuditRepository,
	m *metrics.SignalMetrics,
	log *zap.Logger,
	cfg config.Sentiment,
) *DefaultSentimentGate {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultSentimentGate{
		Source:  source,
		Repo:    repo,
		Audit:   audit,
		Metrics: m,
		Log:     log,
		Cfg:     cfg,
		Now:     time.Now,
	}
}

// ClassifyDirections maps a 0-100 sentiment value to the directions it permits.
// Values below longBelow allow only LONG, values above shortAbove allow only SHORT.
func ClassifyDirections(value, longBelow, shortAbove int) []domain.Direction {
	switch {
	case value < longBelow:
		return []domain.Direction{domain.DirectionLong}
	case value > shortAbove:
		return []domain.Direction{domain.DirectionShort}
	default:
		return []domain.Direction{domain.DirectionLong, domain.DirectionShort}
	}
}

func classificationLabel(value int) string {
	switch {
	case value <= 24:
		return "Extreme Fear"
	case value <= 44:
		return "Fear"
	case value <= 55:
		return "Neutral"
	case value <= 75:
		return "Greed"
	default:
		return "Extreme Greed"
	}
}

// Refresh queries the sentiment source and stores a new reading. A source failure
// produces the neutral fallback reading instead of an error.
func (g *DefaultSentimentGate) Refresh(ctx context.Context) *domain.SentimentReading {
	fetchCtx := ctx
	if g.Cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, g.Cfg.Timeout)
		defer cancel()
	}

	var reading *domain.SentimentReading
	index, err := g.Source.FetchIndex(fetchCtx)
	if err != nil {
		g.Log.Warn("sentiment source unavailable, using fallback",
			zap.String("source", g.Source.Name()),
			zap.Error(err),
		)
		reading = g.fallbackReading(err.Error())
	} else {
		classification := index.Classification
		if classification == "" {
			classification = classificationLabel(index.Value)
		}
		reading = &domain.SentimentReading{
			ID:                uuid.New().String(),
			Value:             index.Value,
			Classification:    classification,
			AllowedDirections: ClassifyDirections(index.Value, g.Cfg.LongBelow, g.Cfg.ShortAbove),
			CapturedAt:        g.Now(),
			Source:            g.Source.Name(),
		}
	}

	g.store(ctx, reading)
	return reading
}

func (g *DefaultSentimentGate) fallbackReading(note string) *domain.SentimentReading {
	return &domain.SentimentReading{
		ID:                uuid.New().String(),
		Value:             FallbackSentimentValue,
		Classification:    classificationLabel(FallbackSentimentValue),
		AllowedDirections: ClassifyDirections(FallbackSentimentValue, g.Cfg.LongBelow, g.Cfg.ShortAbove),
		CapturedAt:        g.Now(),
		Source:            FallbackSentimentSource,
		Note:              note,
	}
}

func (g *DefaultSentimentGate) store(ctx context.Context, reading *domain.SentimentReading) {
	g.mu.Lock()
	g.current = reading
	g.mu.Unlock()

	if err := g.Repo.SaveReading(ctx, reading); err != nil {
		g.Log.Error("failed to persist sentiment reading", zap.String("reading_id", reading.ID), zap.Error(err))
	}

	g.checkLegacyThreshold(reading)

	if g.Metrics != nil {
		g.Metrics.RecordSentiment(reading.Value, reading.Source == FallbackSentimentSource)
	}
	g.Log.Info("sentiment reading updated",
		zap.Int("value", reading.Value),
		zap.String("classification", reading.Classification),
		zap.String("allowed", joinDirections(reading.AllowedDirections)),
		zap.String("source", reading.Source),
	)
}

// checkLegacyThreshold flags readings that the legacy SHORT threshold would gate differently.
func (g *DefaultSentimentGate) checkLegacyThreshold(reading *domain.SentimentReading) {
	if g.Cfg.LegacyShortAbove <= 0 || g.Cfg.LegacyShortAbove == g.Cfg.ShortAbove {
		return
	}
	legacy := ClassifyDirections(reading.Value, g.Cfg.LongBelow, g.Cfg.LegacyShortAbove)
	if joinDirections(legacy) == joinDirections(reading.AllowedDirections) {
		return
	}
	g.Log.Warn("threshold_discrepancy",
		zap.Int("value", reading.Value),
		zap.Int("short_above", g.Cfg.ShortAbove),
		zap.Int("legacy_short_above", g.Cfg.LegacyShortAbove),
		zap.String("allowed", joinDirections(reading.AllowedDirections)),
		zap.String("legacy_allowed", joinDirections(legacy)),
	)
}

// Current returns the latest reading without contacting the sentiment source.
func (g *DefaultSentimentGate) Current(ctx context.Context) *domain.SentimentReading {
	g.mu.RLock()
	current := g.current
	g.mu.RUnlock()
	if current != nil {
		return current
	}

	latest, err := g.Repo.LatestReading(ctx)
	if err == nil {
		g.mu.Lock()
		if g.current == nil {
			g.current = latest
		}
		current = g.current
		g.mu.Unlock()
		return current
	}

	reading := g.fallbackReading("no sentiment reading available yet")
	g.store(ctx, reading)
	return reading
}

func (g *DefaultSentimentGate) CheckDirection(ctx context.Context, direction domain.Direction) *GateDecision {
	reading := g.Current(ctx)
	allowed := direction != domain.DirectionUndefined && reading.Allows(direction)

	decision := &GateDecision{Direction: direction, Allowed: allowed, Reading: reading}

	outcome := "blocked"
	if allowed {
		outcome = "allowed"
	}
	g.Log.Info("sentiment gate check",
		zap.String("direction", string(direction)),
		zap.String("outcome", outcome),
		zap.Int("value", reading.Value),
		zap.String("reading_source", reading.Source),
	)
	if g.Metrics != nil {
		g.Metrics.RecordGateDecision(string(direction), allowed)
	}
	if g.Audit != nil {
		if err := g.Audit.CreateAuditLog(ctx, &domain.AuditLog{
			ID:       uuid.New().String(),
			Category: domain.AuditSentimentGate,
			Subject:  string(direction),
			Outcome:  outcome,
			Message: fmt.Sprintf("value=%d allowed=%s reading=%s source=%s",
				reading.Value, joinDirections(reading.AllowedDirections), reading.ID, reading.Source),
			CreatedAt: g.Now(),
		}); err != nil {
			g.Log.Warn("failed to write gate audit log", zap.Error(err))
		}
	}
	return decision
}

func joinDirections(directions []domain.Direction) string {
	parts := make([]string, len(directions))
	for i, d := range directions {
		parts[i] = string(d)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
