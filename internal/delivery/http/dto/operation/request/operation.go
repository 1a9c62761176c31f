package request

import "github.com/shopspring/decimal"

type CloseOperationRequest struct {
	ExitPrice *decimal.Decimal `json:"exitPrice,omitempty"`
}
