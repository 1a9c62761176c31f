package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OperationStatus string

const (
	OperationOpen   OperationStatus = "open"
	OperationClosed OperationStatus = "closed"
)

type CloseReason string

const (
	CloseReasonTarget CloseReason = "target"
	CloseReasonStop   CloseReason = "stop"
	CloseReasonManual CloseReason = "manual"
	CloseReasonSignal CloseReason = "signal"
)

type Operation struct {
	ID            string
	UserID        string
	Symbol        string
	Side          Direction
	EntryPrice    decimal.Decimal
	Quantity      decimal.Decimal
	Leverage      int32
	TakeProfit    decimal.Decimal
	StopLoss      decimal.Decimal
	Status        OperationStatus
	OpenedAt      time.Time
	ClosedAt      *time.Time
	ExitPrice     *decimal.Decimal
	PnL           decimal.Decimal
	PnLPercentage decimal.Decimal
	CloseReason   CloseReason
	SignalID      *string
}

type OperationFilter struct {
	UserID string
	Symbol string
	Side   Direction
}

type OperationRepository interface {
	GetOperationByID(ctx context.Context, operationID string) (*Operation, error)
	FindOpenOperations(ctx context.Context, filter OperationFilter) ([]*Operation, error)
	ListOpenSymbols(ctx context.Context) ([]string, error)
}

// PriceProvider resolves the current market price of a symbol.
type PriceProvider interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetName() string
}
