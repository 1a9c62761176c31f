package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultAffiliateRepository struct {
	DB *gorm.DB
}

func NewDefaultAffiliateRepository(db *gorm.DB) *DefaultAffiliateRepository {
	return &DefaultAffiliateRepository{DB: db}
}

func (r *DefaultAffiliateRepository) GetLinkByID(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	var model models.AffiliateLinkModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", linkID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainAffiliateLink(&model), nil
}

func (r *DefaultAffiliateRepository) GetLinksByAffiliateID(ctx context.Context, affiliateID string) ([]*domain.AffiliateLink, error) {
	var linkModels []models.AffiliateLinkModel
	if err := r.DB.WithContext(ctx).
		Where("affiliate_id = ?", affiliateID).
		Order("requested_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	links := make([]*domain.AffiliateLink, len(linkModels))
	for i := range linkModels {
		links[i] = mappers.ToDomainAffiliateLink(&linkModels[i])
	}
	return links, nil
}

func (r *DefaultAffiliateRepository) GetAffiliateByID(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	var model models.AffiliateModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", affiliateID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainAffiliate(&model), nil
}

func (r *DefaultAffiliateRepository) SetAffiliateRate(ctx context.Context, affiliateID string, rate *decimal.Decimal) error {
	now := time.Now()
	model := models.AffiliateModel{ID: affiliateID, CreatedAt: now, UpdatedAt: now}
	if rate != nil {
		model.CommissionRate = decimal.NewNullDecimal(*rate)
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"commission_rate", "updated_at"}),
	}).Create(&model).Error
}

func (r *DefaultAffiliateRepository) ExpirePendingLinks(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.AffiliateLinkModel{}).
		Where("status = ? AND expires_at < ?", string(domain.LinkPending), now).
		Updates(map[string]interface{}{
			"status":     string(domain.LinkExpired),
			"reason":     "approval window elapsed",
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *DefaultAffiliateRepository) GetCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error) {
	var model models.CommissionModel
	if err := r.DB.WithContext(ctx).First(&model, "id = ?", commissionID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainCommission(&model), nil
}

func (r *DefaultAffiliateRepository) GetCommissionsByOperationID(ctx context.Context, operationID string) ([]*domain.Commission, error) {
	var commissionModels []models.CommissionModel
	if err := r.DB.WithContext(ctx).Where("operation_id = ?", operationID).Find(&commissionModels).Error; err != nil {
		return nil, err
	}
	commissions := make([]*domain.Commission, len(commissionModels))
	for i := range commissionModels {
		commissions[i] = mappers.ToDomainCommission(&commissionModels[i])
	}
	return commissions, nil
}

func (r *DefaultAffiliateRepository) ConfirmCommission(ctx context.Context, commissionID string, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.CommissionModel{}).
		Where("id = ? AND status = ?", commissionID, string(domain.CommissionPending)).
		Updates(map[string]interface{}{
			"status":     string(domain.CommissionConfirmed),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetCommissionByID(ctx, commissionID); err != nil {
			return err
		}
		return domain.ErrCommissionNotPending
	}
	return nil
}

func (r *DefaultAffiliateRepository) ReserveForCompensation(ctx context.Context, affiliateID string, now time.Time) (decimal.Decimal, int64, error) {
	total := decimal.Zero
	var count int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commissionModels []models.CommissionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("affiliate_id = ? AND status = ?", affiliateID, string(domain.CommissionConfirmed)).
			Find(&commissionModels).Error; err != nil {
			return err
		}
		if len(commissionModels) == 0 {
			return nil
		}

		ids := make([]string, len(commissionModels))
		for i, c := range commissionModels {
			ids[i] = c.ID
			total = total.Add(c.Amount)
		}
		count = int64(len(ids))

		if err := tx.Model(&models.CommissionModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     string(domain.CommissionCompensated),
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&models.AffiliateModel{}).
			Where("id = ?", affiliateID).
			Updates(map[string]interface{}{
				"pending_commission": gorm.Expr("pending_commission - ?", total),
				"updated_at":         now,
			}).Error
	})
	if err != nil {
		return decimal.Zero, 0, err
	}
	return total, count, nil
}
