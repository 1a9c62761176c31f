package request

import "github.com/shopspring/decimal"

type LinkRequest struct {
	AffiliateID string `json:"affiliateId" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
}

type RejectLinkRequest struct {
	Reason string `json:"reason"`
}

type EligibilityRequest struct {
	Eligible *bool `json:"eligible" binding:"required"`
}

// RateRequest sets the affiliate commission rate. A null rate restores the default.
type RateRequest struct {
	Rate *decimal.Decimal `json:"rate"`
}
