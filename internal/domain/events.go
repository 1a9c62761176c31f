package domain

import (
	"context"
	"time"
)

const (
	EventOperationOpened   = "operation.opened"
	EventOperationClosed   = "operation.closed"
	EventCommissionCreated = "commission.created"
	EventSignalProcessed   = "signal.processed"
)

type OperationEvent struct {
	Type          string    `json:"type"`
	OperationID   string    `json:"operation_id"`
	UserID        string    `json:"user_id"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	EntryPrice    string    `json:"entry_price"`
	ExitPrice     string    `json:"exit_price,omitempty"`
	Quantity      string    `json:"quantity"`
	Leverage      int32     `json:"leverage"`
	PnL           string    `json:"pnl,omitempty"`
	PnLPercentage string    `json:"pnl_percentage,omitempty"`
	CloseReason   string    `json:"close_reason,omitempty"`
	SignalID      string    `json:"signal_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type CommissionEvent struct {
	Type         string    `json:"type"`
	CommissionID string    `json:"commission_id"`
	AffiliateID  string    `json:"affiliate_id"`
	UserID       string    `json:"user_id"`
	OperationID  string    `json:"operation_id"`
	Amount       string    `json:"amount"`
	Rate         string    `json:"rate"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type SignalEvent struct {
	Type             string    `json:"type"`
	SignalID         string    `json:"signal_id"`
	Keyword          string    `json:"keyword"`
	Symbol           string    `json:"symbol"`
	Status           string    `json:"status"`
	ProcessingResult string    `json:"processing_result"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventPublisher emits service events to downstream consumers.
type EventPublisher interface {
	PublishOperations(ctx context.Context, events ...OperationEvent) error
	PublishCommission(ctx context.Context, event CommissionEvent) error
	PublishSignal(ctx context.Context, event SignalEvent) error
}
