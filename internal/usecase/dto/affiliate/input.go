package affiliatedto

import "github.com/shopspring/decimal"

type RequestLinkInput struct {
	AffiliateID string
	UserID      string
}

type SetEligibilityInput struct {
	LinkID   string
	Eligible bool
}

type SetRateInput struct {
	AffiliateID string
	Rate        *decimal.Decimal
}
