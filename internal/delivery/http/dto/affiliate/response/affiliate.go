package response

type LinkResponse struct {
	ID                 string  `json:"id"`
	AffiliateID        string  `json:"affiliateId"`
	UserID             string  `json:"userId"`
	Status             string  `json:"status"`
	RequestedAt        string  `json:"requestedAt"`
	ExpiresAt          string  `json:"expiresAt"`
	LinkedAt           *string `json:"linkedAt,omitempty"`
	CommissionEligible bool    `json:"commissionEligible"`
	Reason             string  `json:"reason,omitempty"`
}

type AffiliateResponse struct {
	ID                string  `json:"id"`
	CommissionRate    *string `json:"commissionRate,omitempty"`
	TotalCommission   string  `json:"totalCommission"`
	PendingCommission string  `json:"pendingCommission"`
	CommissionCount   int64   `json:"commissionCount"`
}

type ReservationResponse struct {
	AffiliateID string `json:"affiliateId"`
	Amount      string `json:"amount"`
	Count       int64  `json:"count"`
}
