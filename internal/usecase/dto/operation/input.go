package operationdto

import (
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OpenInput struct {
	Signal *domain.Signal
	Price  decimal.Decimal
}

type CloseInput struct {
	OperationID string
	ExitPrice   decimal.Decimal
	Reason      domain.CloseReason
}
