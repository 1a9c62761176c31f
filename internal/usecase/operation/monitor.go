package operation

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PositionMonitor closes open operations whose take-profit or stop-loss price
// has been touched.
type PositionMonitor struct {
	Operations domain.OperationRepository
	Prices     domain.PriceProvider
	Lifecycle  OperationLifecycle
	Log        *zap.Logger
}

func NewPositionMonitor(operations domain.OperationRepository, prices domain.PriceProvider, lifecycle OperationLifecycle, log *zap.Logger) *PositionMonitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &PositionMonitor{Operations: operations, Prices: prices, Lifecycle: lifecycle, Log: log}
}

// Check runs one monitoring pass and returns how many operations it closed.
func (m *PositionMonitor) Check(ctx context.Context) (int, error) {
	symbols, err := m.Operations.ListOpenSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open symbols: %w", err)
	}

	var closed int
	var errs []error
	for _, symbol := range symbols {
		price, err := m.Prices.GetPrice(ctx, symbol)
		if err != nil {
			m.Log.Warn("price unavailable for monitored symbol", zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		operations, err := m.Operations.FindOpenOperations(ctx, domain.OperationFilter{Symbol: symbol})
		if err != nil {
			errs = append(errs, fmt.Errorf("find open operations for %s: %w", symbol, err))
			continue
		}
		for _, operation := range operations {
			reason, hit := TriggeredBy(operation, price)
			if !hit {
				continue
			}
			_, err := m.Lifecycle.Close(ctx, &operationdto.CloseInput{
				OperationID: operation.ID,
				ExitPrice:   price,
				Reason:      reason,
			})
			if errors.Is(err, domain.ErrAlreadyClosed) {
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("close operation %s: %w", operation.ID, err))
				continue
			}
			closed++
		}
	}
	return closed, errors.Join(errs...)
}

// TriggeredBy reports whether price reaches the operation's take-profit or stop-loss.
func TriggeredBy(operation *domain.Operation, price decimal.Decimal) (domain.CloseReason, bool) {
	hasTarget := operation.TakeProfit.IsPositive()
	hasStop := operation.StopLoss.IsPositive()
	switch operation.Side {
	case domain.DirectionLong:
		if hasTarget && price.GreaterThanOrEqual(operation.TakeProfit) {
			return domain.CloseReasonTarget, true
		}
		if hasStop && price.LessThanOrEqual(operation.StopLoss) {
			return domain.CloseReasonStop, true
		}
	case domain.DirectionShort:
		if hasTarget && price.LessThanOrEqual(operation.TakeProfit) {
			return domain.CloseReasonTarget, true
		}
		if hasStop && price.GreaterThanOrEqual(operation.StopLoss) {
			return domain.CloseReasonStop, true
		}
	}
	return "", false
}
