package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRetentionRepository struct {
	DB *gorm.DB
}

func NewDefaultRetentionRepository(db *gorm.DB) *DefaultRetentionRepository {
	return &DefaultRetentionRepository{DB: db}
}

func (r *DefaultRetentionRepository) PurgeSignals(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status <> ? AND received_at < ?", string(domain.SignalReceived), before).
		Where("NOT EXISTS (SELECT 1 FROM operations o WHERE o.signal_id = signals.id AND o.status = ?)", string(domain.OperationOpen)).
		Delete(&models.SignalModel{})
	return res.RowsAffected, res.Error
}

func (r *DefaultRetentionRepository) PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("created_at < ?", before).Delete(&models.AuditLogModel{})
	return res.RowsAffected, res.Error
}

func (r *DefaultRetentionRepository) PurgeSentimentReadings(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("captured_at < ?", before).
		Where("id <> (SELECT id FROM sentiment_readings ORDER BY captured_at DESC LIMIT 1)").
		Delete(&models.SentimentReadingModel{})
	return res.RowsAffected, res.Error
}

func (r *DefaultRetentionRepository) PurgeClosedOperations(ctx context.Context, before, commissionSince time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status = ? AND closed_at < ?", string(domain.OperationClosed), before).
		Where(`NOT EXISTS (
			SELECT 1 FROM commissions c
			WHERE c.operation_id = operations.id
			AND (c.status <> ? OR c.created_at >= ?)
		)`, string(domain.CommissionCompensated), commissionSince).
		Delete(&models.OperationModel{})
	return res.RowsAffected, res.Error
}

func (r *DefaultRetentionRepository) PurgeCompensatedCommissions(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(domain.CommissionCompensated), before).
		Delete(&models.CommissionModel{})
	return res.RowsAffected, res.Error
}

func (r *DefaultRetentionRepository) PurgeInactiveLinks(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{string(domain.LinkRejected), string(domain.LinkExpired)}, before).
		Delete(&models.AffiliateLinkModel{})
	return res.RowsAffected, res.Error
}
