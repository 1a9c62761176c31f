package affiliatedto

import (
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

// SettlementOutput reports the result of settling one closed operation.
type SettlementOutput struct {
	HasAffiliate bool
	Commission   *domain.Commission
}

type ReservationOutput struct {
	AffiliateID string
	Amount      decimal.Decimal
	Count       int64
}
