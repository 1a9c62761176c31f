package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EligibilityReader is the read side of a trading transaction used by eligibility checks.
type EligibilityReader interface {
	CountOpenOperations(ctx context.Context, userID string) (int64, error)
	LastOpenedAt(ctx context.Context, userID, symbol string) (*time.Time, error)
}

// SettlementTx is the part of a trading transaction used by commission settlement.
type SettlementTx interface {
	GetActiveLinkByUserID(ctx context.Context, userID string) (*AffiliateLink, error)
	GetAffiliateByID(ctx context.Context, affiliateID string) (*Affiliate, error)
	CreateCommission(ctx context.Context, commission *Commission) error
	AddAffiliateTotals(ctx context.Context, affiliateID string, amount decimal.Decimal) error
}

// LinkTx is the part of a trading transaction used by the affiliate link state machine.
type LinkTx interface {
	GetLinkForUpdate(ctx context.Context, linkID string) (*AffiliateLink, error)
	GetLinksByUserID(ctx context.Context, userID string, statuses ...AffiliateLinkStatus) ([]*AffiliateLink, error)
	CreateLink(ctx context.Context, link *AffiliateLink) error
	UpdateLink(ctx context.Context, link *AffiliateLink) error
	EnsureAffiliate(ctx context.Context, affiliateID string) error
}

// TradingTx is one atomic unit. LockUser serializes all units touching the same user
// until Commit or Rollback.
type TradingTx interface {
	EligibilityReader
	SettlementTx
	LinkTx

	LockUser(ctx context.Context, userID string) error
	CreateOperation(ctx context.Context, operation *Operation) error
	GetOperationForUpdate(ctx context.Context, operationID string) (*Operation, error)
	// CloseOperation persists the close fields of an open operation and fails with
	// ErrAlreadyClosed when the stored row is not open.
	CloseOperation(ctx context.Context, operation *Operation) error

	Commit() error
	Rollback() error
}

type TradingStore interface {
	BeginTx(ctx context.Context) (TradingTx, error)
}
