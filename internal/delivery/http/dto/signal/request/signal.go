package request

import "github.com/shopspring/decimal"

// SignalRequest is the inbound webhook body. Timestamp is ISO-8601; without an
// offset it is read as UTC.
type SignalRequest struct {
	SignalKeyword string           `json:"signalKeyword"`
	Symbol        string           `json:"symbol"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Timestamp     string           `json:"timestamp"`
	Source        string           `json:"source,omitempty"`
}
