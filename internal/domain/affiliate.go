package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AffiliateLinkStatus string

const (
	LinkPending  AffiliateLinkStatus = "pending"
	LinkActive   AffiliateLinkStatus = "active"
	LinkRejected AffiliateLinkStatus = "rejected"
	LinkExpired  AffiliateLinkStatus = "expired"
)

type AffiliateLink struct {
	ID                 string
	AffiliateID        string
	UserID             string
	Status             AffiliateLinkStatus
	RequestedAt        time.Time
	ExpiresAt          time.Time
	LinkedAt           *time.Time
	CommissionEligible bool
	Reason             string
	UpdatedAt          time.Time
}

// Affiliate holds the per-affiliate commission rate override and running totals.
type Affiliate struct {
	ID                string
	CommissionRate    *decimal.Decimal
	TotalCommission   decimal.Decimal
	PendingCommission decimal.Decimal
	CommissionCount   int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CommissionStatus string

const (
	CommissionPending     CommissionStatus = "pending"
	CommissionConfirmed   CommissionStatus = "confirmed"
	CommissionCompensated CommissionStatus = "compensated"
)

type Commission struct {
	ID           string
	AffiliateID  string
	UserID       string
	OperationID  string
	Amount       decimal.Decimal
	Rate         decimal.Decimal
	SourceProfit decimal.Decimal
	Status       CommissionStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AffiliateRepository interface {
	GetLinkByID(ctx context.Context, linkID string) (*AffiliateLink, error)
	GetLinksByAffiliateID(ctx context.Context, affiliateID string) ([]*AffiliateLink, error)
	GetAffiliateByID(ctx context.Context, affiliateID string) (*Affiliate, error)
	SetAffiliateRate(ctx context.Context, affiliateID string, rate *decimal.Decimal) error
	ExpirePendingLinks(ctx context.Context, now time.Time) (int64, error)
	GetCommissionByID(ctx context.Context, commissionID string) (*Commission, error)
	GetCommissionsByOperationID(ctx context.Context, operationID string) ([]*Commission, error)
	ConfirmCommission(ctx context.Context, commissionID string, now time.Time) error
	// ReserveForCompensation moves confirmed commissions of an affiliate to compensated
	// and returns the reserved amount and row count.
	ReserveForCompensation(ctx context.Context, affiliateID string, now time.Time) (decimal.Decimal, int64, error)
}
