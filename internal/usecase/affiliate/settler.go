package affiliate

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	affiliatedto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/affiliate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionSettler computes the affiliate commission of a closed operation. Settle
// runs inside the transaction that closes the operation.
type CommissionSettler interface {
	Settle(ctx context.Context, tx domain.SettlementTx, operation *domain.Operation) (*affiliatedto.SettlementOutput, error)
}

type DefaultCommissionSettler struct {
	DefaultRate decimal.Decimal
	Now         func() time.Time
}

func NewDefaultCommissionSettler(defaultRate float64) *DefaultCommissionSettler {
	return &DefaultCommissionSettler{
		DefaultRate: decimal.NewFromFloat(defaultRate),
		Now:         time.Now,
	}
}

func (s *DefaultCommissionSettler) Settle(ctx context.Context, tx domain.SettlementTx, operation *domain.Operation) (*affiliatedto.SettlementOutput, error) {
	if operation.Status != domain.OperationClosed || !operation.PnL.IsPositive() {
		return &affiliatedto.SettlementOutput{HasAffiliate: false}, nil
	}

	link, err := tx.GetActiveLinkByUserID(ctx, operation.UserID)
	if err != nil {
		return nil, fmt.Errorf("get active link: %w", err)
	}
	if link == nil || link.Status != domain.LinkActive || !link.CommissionEligible {
		return &affiliatedto.SettlementOutput{HasAffiliate: false}, nil
	}

	affiliate, err := tx.GetAffiliateByID(ctx, link.AffiliateID)
	if err != nil {
		return nil, fmt.Errorf("get affiliate %s: %w", link.AffiliateID, err)
	}

	rate := s.DefaultRate
	if affiliate.CommissionRate != nil {
		rate = *affiliate.CommissionRate
	}
	amount := operation.PnL.Mul(rate)

	now := s.Now()
	commission := &domain.Commission{
		ID:           uuid.New().String(),
		AffiliateID:  link.AffiliateID,
		UserID:       operation.UserID,
		OperationID:  operation.ID,
		Amount:       amount,
		Rate:         rate,
		SourceProfit: operation.PnL,
		Status:       domain.CommissionPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.CreateCommission(ctx, commission); err != nil {
		return nil, fmt.Errorf("create commission: %w", err)
	}
	if err := tx.AddAffiliateTotals(ctx, link.AffiliateID, amount); err != nil {
		return nil, fmt.Errorf("update affiliate totals: %w", err)
	}

	return &affiliatedto.SettlementOutput{HasAffiliate: true, Commission: commission}, nil
}
