package domain

import (
	"context"
	"time"
)

type RetentionRepository interface {
	// PurgeSignals deletes processed/expired signals received before the cutoff that
	// no open operation references.
	PurgeSignals(ctx context.Context, before time.Time) (int64, error)
	PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error)
	// PurgeSentimentReadings never deletes the most recent reading.
	PurgeSentimentReadings(ctx context.Context, before time.Time) (int64, error)
	// PurgeClosedOperations deletes operations closed before the cutoff that have no
	// pending or confirmed commission and no commission created after commissionSince.
	PurgeClosedOperations(ctx context.Context, before, commissionSince time.Time) (int64, error)
	PurgeCompensatedCommissions(ctx context.Context, before time.Time) (int64, error)
	PurgeInactiveLinks(ctx context.Context, before time.Time) (int64, error)
}
