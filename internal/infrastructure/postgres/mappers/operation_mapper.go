package mappers

import (
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
)

func ToDomainOperation(model *models.OperationModel) *domain.Operation {
	operation := &domain.Operation{
		ID:            model.ID,
		UserID:        model.UserID,
		Symbol:        model.Symbol,
		Side:          domain.Direction(model.Side),
		EntryPrice:    model.EntryPrice,
		Quantity:      model.Quantity,
		Leverage:      model.Leverage,
		TakeProfit:    model.TakeProfit,
		StopLoss:      model.StopLoss,
		Status:        domain.OperationStatus(model.Status),
		OpenedAt:      model.OpenedAt,
		ClosedAt:      model.ClosedAt,
		PnL:           model.PnL,
		PnLPercentage: model.PnLPercentage,
		CloseReason:   domain.CloseReason(model.CloseReason),
		SignalID:      model.SignalID,
	}
	if model.ExitPrice.Valid {
		exit := model.ExitPrice.Decimal
		operation.ExitPrice = &exit
	}
	return operation
}

func ToGORMOperation(operation *domain.Operation) *models.OperationModel {
	model := &models.OperationModel{
		ID:            operation.ID,
		UserID:        operation.UserID,
		Symbol:        operation.Symbol,
		Side:          string(operation.Side),
		EntryPrice:    operation.EntryPrice,
		Quantity:      operation.Quantity,
		Leverage:      operation.Leverage,
		TakeProfit:    operation.TakeProfit,
		StopLoss:      operation.StopLoss,
		Status:        string(operation.Status),
		OpenedAt:      operation.OpenedAt,
		ClosedAt:      operation.ClosedAt,
		PnL:           operation.PnL,
		PnLPercentage: operation.PnLPercentage,
		CloseReason:   string(operation.CloseReason),
		SignalID:      operation.SignalID,
	}
	if operation.ExitPrice != nil {
		model.ExitPrice = decimal.NewNullDecimal(*operation.ExitPrice)
	}
	return model
}
