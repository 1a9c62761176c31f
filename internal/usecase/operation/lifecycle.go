package operation

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/affiliate"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type OperationLifecycle interface {
	Close(ctx context.Context, input *operationdto.CloseInput) (*operationdto.CloseOutput, error)
}

type DefaultOperationLifecycle struct {
	Store      domain.TradingStore
	Operations domain.OperationRepository
	Settler    affiliate.CommissionSettler
	Publisher  domain.EventPublisher
	Metrics    *metrics.SignalMetrics
	Log        *zap.Logger
	Now        func() time.Time
}

func NewDefaultOperationLifecycle(
	store domain.TradingStore,
	operations domain.OperationRepository,
	settler affiliate.CommissionSettler,
	publisher domain.EventPublisher,
	m *metrics.SignalMetrics,
	log *zap.Logger,
) *DefaultOperationLifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultOperationLifecycle{
		Store:      store,
		Operations: operations,
		Settler:    settler,
		Publisher:  publisher,
		Metrics:    m,
		Log:        log,
		Now:        time.Now,
	}
}

// ComputePnL returns the absolute profit and the leveraged return percentage of
// closing operation at exitPrice. The percentage is rounded to 4 places, the
// absolute profit is exact.
func ComputePnL(operation *domain.Operation, exitPrice decimal.Decimal) (pnl, percentage decimal.Decimal) {
	move := exitPrice.Sub(operation.EntryPrice)
	if operation.Side == domain.DirectionShort {
		move = move.Neg()
	}
	leverage := decimal.NewFromInt32(operation.Leverage)
	if operation.EntryPrice.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	percentage = move.Div(operation.EntryPrice).Mul(hundred).Mul(leverage).Round(4)
	pnl = operation.Quantity.Mul(move).Mul(leverage)
	return pnl, percentage
}

// Close settles an open operation and its affiliate commission in one transaction.
func (uc *DefaultOperationLifecycle) Close(ctx context.Context, input *operationdto.CloseInput) (*operationdto.CloseOutput, error) {
	if !input.ExitPrice.IsPositive() {
		return nil, fmt.Errorf("exit price must be positive")
	}
	current, err := uc.Operations.GetOperationByID(ctx, input.OperationID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.OperationOpen {
		return nil, domain.ErrAlreadyClosed
	}

	tx, err := uc.Store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				uc.Log.Error("failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	if err := tx.LockUser(ctx, current.UserID); err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	operation, err := tx.GetOperationForUpdate(ctx, input.OperationID)
	if err != nil {
		return nil, err
	}
	if operation.Status != domain.OperationOpen {
		return nil, domain.ErrAlreadyClosed
	}

	now := uc.Now()
	exit := input.ExitPrice
	operation.PnL, operation.PnLPercentage = ComputePnL(operation, exit)
	operation.ExitPrice = &exit
	operation.Status = domain.OperationClosed
	operation.ClosedAt = &now
	operation.CloseReason = input.Reason

	if err := tx.CloseOperation(ctx, operation); err != nil {
		return nil, err
	}

	var commission *domain.Commission
	if operation.PnL.IsPositive() {
		settlement, err := uc.Settler.Settle(ctx, tx, operation)
		if err != nil {
			return nil, fmt.Errorf("settle commission: %w", err)
		}
		if settlement.HasAffiliate {
			commission = settlement.Commission
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	uc.Log.Info("operation closed",
		zap.String("operation_id", operation.ID),
		zap.String("user_id", operation.UserID),
		zap.String("symbol", operation.Symbol),
		zap.String("side", string(operation.Side)),
		zap.String("exit_price", exit.String()),
		zap.String("pnl", operation.PnL.String()),
		zap.String("pnl_percentage", operation.PnLPercentage.String()),
		zap.String("reason", string(operation.CloseReason)),
	)
	if commission != nil {
		uc.Log.Info("commission created",
			zap.String("commission_id", commission.ID),
			zap.String("affiliate_id", commission.AffiliateID),
			zap.String("operation_id", operation.ID),
			zap.String("amount", commission.Amount.String()),
		)
	}
	if uc.Metrics != nil {
		uc.Metrics.RecordOperationClosed(string(operation.CloseReason), string(operation.Side), operation.PnLPercentage.InexactFloat64())
		if commission != nil {
			uc.Metrics.RecordCommission(commission.AffiliateID, commission.Amount.InexactFloat64())
		}
	}
	uc.publish(operation, commission)

	return &operationdto.CloseOutput{Operation: operation, Commission: commission}, nil
}

func (uc *DefaultOperationLifecycle) publish(operation *domain.Operation, commission *domain.Commission) {
	if uc.Publisher == nil {
		return
	}
	go func(event domain.OperationEvent) {
		if err := uc.Publisher.PublishOperations(context.Background(), event); err != nil {
			uc.Log.Error("failed to publish operation event", zap.String("stage", "closing"), zap.Error(err))
		}
	}(operationEvent(domain.EventOperationClosed, operation))

	if commission == nil {
		return
	}
	go func(event domain.CommissionEvent) {
		if err := uc.Publisher.PublishCommission(context.Background(), event); err != nil {
			uc.Log.Error("failed to publish commission event", zap.Error(err))
		}
	}(domain.CommissionEvent{
		Type:         domain.EventCommissionCreated,
		CommissionID: commission.ID,
		AffiliateID:  commission.AffiliateID,
		UserID:       commission.UserID,
		OperationID:  commission.OperationID,
		Amount:       commission.Amount.String(),
		Rate:         commission.Rate.String(),
		OccurredAt:   commission.CreatedAt,
	})
}

func operationEvent(eventType string, operation *domain.Operation) domain.OperationEvent {
	event := domain.OperationEvent{
		Type:        eventType,
		OperationID: operation.ID,
		UserID:      operation.UserID,
		Symbol:      operation.Symbol,
		Side:        string(operation.Side),
		EntryPrice:  operation.EntryPrice.String(),
		Quantity:    operation.Quantity.String(),
		Leverage:    operation.Leverage,
		OccurredAt:  operation.OpenedAt,
	}
	if operation.SignalID != nil {
		event.SignalID = *operation.SignalID
	}
	if operation.Status == domain.OperationClosed {
		if operation.ExitPrice != nil {
			event.ExitPrice = operation.ExitPrice.String()
		}
		event.PnL = operation.PnL.String()
		event.PnLPercentage = operation.PnLPercentage.String()
		event.CloseReason = string(operation.CloseReason)
		if operation.ClosedAt != nil {
			event.OccurredAt = *operation.ClosedAt
		}
	}
	return event
}
