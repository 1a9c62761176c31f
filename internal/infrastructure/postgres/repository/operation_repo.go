package repository

import (
	"context"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOperationRepository struct {
	DB *gorm.DB
}

func NewDefaultOperationRepository(db *gorm.DB) *DefaultOperationRepository {
	return &DefaultOperationRepository{DB: db}
}

func (r *DefaultOperationRepository) GetOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	var model models.OperationModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", operationID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainOperation(&model), nil
}

func (r *DefaultOperationRepository) FindOpenOperations(ctx context.Context, filter domain.OperationFilter) ([]*domain.Operation, error) {
	query := r.DB.WithContext(ctx).Model(&models.OperationModel{}).
		Where("status = ?", string(domain.OperationOpen))

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Side != "" {
		query = query.Where("side = ?", string(filter.Side))
	}

	var operationModels []models.OperationModel
	if err := query.Order("opened_at ASC, id ASC").Find(&operationModels).Error; err != nil {
		return nil, err
	}

	operations := make([]*domain.Operation, len(operationModels))
	for i := range operationModels {
		operations[i] = mappers.ToDomainOperation(&operationModels[i])
	}
	return operations, nil
}

func (r *DefaultOperationRepository) ListOpenSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.DB.WithContext(ctx).Model(&models.OperationModel{}).
		Where("status = ?", string(domain.OperationOpen)).
		Distinct("symbol").
		Order("symbol").
		Pluck("symbol", &symbols).Error
	return symbols, err
}
