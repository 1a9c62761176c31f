package response

type OperationResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userId"`
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	EntryPrice    string  `json:"entryPrice"`
	Quantity      string  `json:"quantity"`
	Leverage      int32   `json:"leverage"`
	TakeProfit    string  `json:"takeProfit"`
	StopLoss      string  `json:"stopLoss"`
	Status        string  `json:"status"`
	OpenedAt      string  `json:"openedAt"`
	ClosedAt      *string `json:"closedAt,omitempty"`
	ExitPrice     *string `json:"exitPrice,omitempty"`
	PnL           string  `json:"pnl"`
	PnLPercentage string  `json:"pnlPercentage"`
	CloseReason   string  `json:"closeReason,omitempty"`
	SignalID      *string `json:"signalId,omitempty"`
}

type CloseOperationResponse struct {
	Operation    OperationResponse `json:"operation"`
	CommissionID string            `json:"commissionId,omitempty"`
	Commission   string            `json:"commission,omitempty"`
}

type EligibilityResponse struct {
	Allowed          bool   `json:"allowed"`
	ReasonCode       string `json:"reasonCode,omitempty"`
	MinutesRemaining int64  `json:"minutesRemaining,omitempty"`
	Required         string `json:"required,omitempty"`
	Available        string `json:"available,omitempty"`
}
