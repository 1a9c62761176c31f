package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultSignalRepository struct {
	DB *gorm.DB
}

func NewDefaultSignalRepository(db *gorm.DB) *DefaultSignalRepository {
	return &DefaultSignalRepository{DB: db}
}

func (r *DefaultSignalRepository) CreateSignal(ctx context.Context, signal *domain.Signal) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMSignal(signal)).Error
}

func (r *DefaultSignalRepository) GetSignalByID(ctx context.Context, signalID string) (*domain.Signal, error) {
	var model models.SignalModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", signalID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainSignal(&model), nil
}

func (r *DefaultSignalRepository) FinalizeSignal(ctx context.Context, signalID string, status domain.SignalStatus, result string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.SignalModel{}).
		Where("id = ? AND status = ?", signalID, string(domain.SignalReceived)).
		Updates(map[string]interface{}{
			"status":            string(status),
			"processing_result": result,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&models.SignalModel{}).Where("id = ?", signalID).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			return false, domain.ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

func (r *DefaultSignalRepository) ExpireStaleSignals(ctx context.Context, receivedBefore time.Time, result string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.SignalModel{}).
		Where("status = ? AND received_at < ?", string(domain.SignalReceived), receivedBefore).
		Updates(map[string]interface{}{
			"status":            string(domain.SignalExpired),
			"processing_result": result,
		})
	return res.RowsAffected, res.Error
}
