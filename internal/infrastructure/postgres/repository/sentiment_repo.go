package repository

import (
	"context"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultSentimentRepository struct {
	DB *gorm.DB
}

func NewDefaultSentimentRepository(db *gorm.DB) *DefaultSentimentRepository {
	return &DefaultSentimentRepository{DB: db}
}

func (r *DefaultSentimentRepository) SaveReading(ctx context.Context, reading *domain.SentimentReading) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMSentimentReading(reading)).Error
}

func (r *DefaultSentimentRepository) LatestReading(ctx context.Context) (*domain.SentimentReading, error) {
	var model models.SentimentReadingModel
	if err := r.DB.WithContext(ctx).Order("captured_at DESC").First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainSentimentReading(&model), nil
}

type DefaultAuditRepository struct {
	DB *gorm.DB
}

func NewDefaultAuditRepository(db *gorm.DB) *DefaultAuditRepository {
	return &DefaultAuditRepository{DB: db}
}

func (r *DefaultAuditRepository) CreateAuditLog(ctx context.Context, log *domain.AuditLog) error {
	return r.DB.WithContext(ctx).Create(mappers.ToGORMAuditLog(log)).Error
}
