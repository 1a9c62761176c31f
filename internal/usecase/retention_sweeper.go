package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	SweepExpiry   = "expiry"
	SweepCleanup  = "cleanup"
	SweepCritical = "critical"
)

type RetentionSweeper interface {
	SweepExpired(ctx context.Context) (*SweepReport, error)
	Cleanup(ctx context.Context) (*SweepReport, error)
	CriticalCleanup(ctx context.Context) (*SweepReport, error)
}

// SweepReport counts affected rows per table.
type SweepReport struct {
	Sweep    string
	Affected map[string]int64
}

func (r *SweepReport) Total() int64 {
	var total int64
	for _, n := range r.Affected {
		total += n
	}
	return total
}

type DefaultRetentionSweeper struct {
	Signals    domain.SignalRepository
	Affiliates domain.AffiliateRepository
	Repo       domain.RetentionRepository
	Metrics    *metrics.SignalMetrics
	Log        *zap.Logger
	Cfg        config.Retention
	Freshness  time.Duration
	Now        func() time.Time
}

func NewDefaultRetentionSweeper(
	signals domain.SignalRepository,
	affiliates domain.AffiliateRepository,
	repo domain.RetentionRepository,
	m *metrics.SignalMetrics,
	log *zap.Logger,
	cfg config.Retention,
	freshness time.Duration,
) *DefaultRetentionSweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultRetentionSweeper{
		Signals:    signals,
		Affiliates: affiliates,
		Repo:       repo,
		Metrics:    m,
		Log:        log,
		Cfg:        cfg,
		Freshness:  freshness,
		Now:        time.Now,
	}
}

type purgeStep struct {
	table string
	run   func(ctx context.Context) (int64, error)
}

// SweepExpired marks signals still received after the freshness window as expired
// and expires pending affiliate links past their approval deadline.
func (s *DefaultRetentionSweeper) SweepExpired(ctx context.Context) (*SweepReport, error) {
	now := s.Now()
	return s.run(ctx, SweepExpiry, []purgeStep{
		{"signals", func(ctx context.Context) (int64, error) {
			n, err := s.Signals.ExpireStaleSignals(ctx, now.Add(-s.Freshness), "expired: not processed within freshness window")
			if err == nil && s.Metrics != nil {
				s.Metrics.RecordSignalsExpired(n)
			}
			return n, err
		}},
		{"affiliate_links", func(ctx context.Context) (int64, error) {
			n, err := s.Affiliates.ExpirePendingLinks(ctx, now)
			if err == nil && s.Metrics != nil {
				s.Metrics.RecordLinkTransitions(string(domain.LinkExpired), n)
			}
			return n, err
		}},
	})
}

// Cleanup removes non-critical rows past their retention window.
func (s *DefaultRetentionSweeper) Cleanup(ctx context.Context) (*SweepReport, error) {
	now := s.Now()
	return s.run(ctx, SweepCleanup, []purgeStep{
		{"signals", func(ctx context.Context) (int64, error) {
			return s.Repo.PurgeSignals(ctx, now.Add(-s.Cfg.Signals))
		}},
		{"audit_logs", func(ctx context.Context) (int64, error) {
			return s.Repo.PurgeAuditLogs(ctx, now.Add(-s.Cfg.AuditLogs))
		}},
		{"sentiment_readings", func(ctx context.Context) (int64, error) {
			return s.Repo.PurgeSentimentReadings(ctx, now.Add(-s.Cfg.SentimentReadings))
		}},
		{"operations", func(ctx context.Context) (int64, error) {
			return s.Repo.PurgeClosedOperations(ctx, now.Add(-s.Cfg.ClosedOperations), now.Add(-s.Cfg.CommissionReference))
		}},
	})
}

// CriticalCleanup removes settled financial rows after the long retention window.
func (s *DefaultRetentionSweeper) CriticalCleanup(ctx context.Context) (*SweepReport, error) {
	now := s.Now()
	return s.run(ctx, SweepCritical, []purgeStep{
		{"commissions", func(ctx context.Context) (int64, error) {
			return s.Repo.PurgeCompensatedCommissions(ctx, now.Add(-s.Cfg.CriticalCommissions))
		}},
		{"affiliate_links", func(ctx context.Context) (int64, error) {
			return s.Repo.PurgeInactiveLinks(ctx, now.Add(-s.Cfg.CriticalLinks))
		}},
		{"operations", func(ctx context.Context) (int64, error) {
			cutoff := now.Add(-s.Cfg.CriticalOperations)
			return s.Repo.PurgeClosedOperations(ctx, cutoff, cutoff)
		}},
	})
}

func (s *DefaultRetentionSweeper) run(ctx context.Context, sweep string, steps []purgeStep) (*SweepReport, error) {
	report := &SweepReport{Sweep: sweep, Affected: make(map[string]int64, len(steps))}
	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := step.run(ctx)
		if err != nil {
			s.Log.Error("retention step failed",
				zap.String("sweep", sweep),
				zap.String("table", step.table),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", step.table, err))
			continue
		}
		report.Affected[step.table] = n
		if s.Metrics != nil {
			s.Metrics.RecordSweep(sweep, step.table, n)
		}
	}

	if total := report.Total(); total > 0 {
		s.Log.Info("retention sweep finished",
			zap.String("sweep", sweep),
			zap.Int64("affected", total),
			zap.Any("tables", report.Affected),
		)
	}
	return report, errors.Join(errs...)
}
