package mappers

import (
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
)

func ToDomainAffiliateLink(model *models.AffiliateLinkModel) *domain.AffiliateLink {
	return &domain.AffiliateLink{
		ID:                 model.ID,
		AffiliateID:        model.AffiliateID,
		UserID:             model.UserID,
		Status:             domain.AffiliateLinkStatus(model.Status),
		RequestedAt:        model.RequestedAt,
		ExpiresAt:          model.ExpiresAt,
		LinkedAt:           model.LinkedAt,
		CommissionEligible: model.CommissionEligible,
		Reason:             model.Reason,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMAffiliateLink(link *domain.AffiliateLink) *models.AffiliateLinkModel {
	return &models.AffiliateLinkModel{
		ID:                 link.ID,
		AffiliateID:        link.AffiliateID,
		UserID:             link.UserID,
		Status:             string(link.Status),
		RequestedAt:        link.RequestedAt,
		ExpiresAt:          link.ExpiresAt,
		LinkedAt:           link.LinkedAt,
		CommissionEligible: link.CommissionEligible,
		Reason:             link.Reason,
		UpdatedAt:          link.UpdatedAt,
	}
}

func ToDomainAffiliate(model *models.AffiliateModel) *domain.Affiliate {
	affiliate := &domain.Affiliate{
		ID:                model.ID,
		TotalCommission:   model.TotalCommission,
		PendingCommission: model.PendingCommission,
		CommissionCount:   model.CommissionCount,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if model.CommissionRate.Valid {
		rate := model.CommissionRate.Decimal
		affiliate.CommissionRate = &rate
	}
	return affiliate
}

func ToDomainCommission(model *models.CommissionModel) *domain.Commission {
	return &domain.Commission{
		ID:           model.ID,
		AffiliateID:  model.AffiliateID,
		UserID:       model.UserID,
		OperationID:  model.OperationID,
		Amount:       model.Amount,
		Rate:         model.Rate,
		SourceProfit: model.SourceProfit,
		Status:       domain.CommissionStatus(model.Status),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMCommission(commission *domain.Commission) *models.CommissionModel {
	return &models.CommissionModel{
		ID:           commission.ID,
		AffiliateID:  commission.AffiliateID,
		UserID:       commission.UserID,
		OperationID:  commission.OperationID,
		Amount:       commission.Amount,
		Rate:         commission.Rate,
		SourceProfit: commission.SourceProfit,
		Status:       string(commission.Status),
		CreatedAt:    commission.CreatedAt,
		UpdatedAt:    commission.UpdatedAt,
	}
}
