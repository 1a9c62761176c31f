package signaldto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessSignalInput is the inbound signal payload.
type ProcessSignalInput struct {
	SignalKeyword string
	Symbol        string
	Price         *decimal.Decimal
	Timestamp     time.Time
	Source        string
	RawPayload    string
}
