package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTradingStore opens database transactions for the operation lifecycle,
// commission settlement and the affiliate link state machine.
type DefaultTradingStore struct {
	DB *gorm.DB
}

func NewDefaultTradingStore(db *gorm.DB) *DefaultTradingStore {
	return &DefaultTradingStore{DB: db}
}

func (s *DefaultTradingStore) BeginTx(ctx context.Context) (domain.TradingTx, error) {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &tradingTx{tx: tx}, nil
}

type tradingTx struct {
	tx *gorm.DB
}

func (t *tradingTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *tradingTx) Rollback() error {
	return t.tx.Rollback().Error
}

// LockUser takes a transaction scoped advisory lock, released on commit or rollback.
func (t *tradingTx) LockUser(ctx context.Context, userID string) error {
	return t.tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "user:"+userID).Error
}

func (t *tradingTx) CountOpenOperations(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := t.tx.WithContext(ctx).Model(&models.OperationModel{}).
		Where("user_id = ? AND status = ?", userID, string(domain.OperationOpen)).
		Count(&count).Error
	return count, err
}

func (t *tradingTx) LastOpenedAt(ctx context.Context, userID, symbol string) (*time.Time, error) {
	var model models.OperationModel
	err := t.tx.WithContext(ctx).
		Select("opened_at").
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Order("opened_at DESC").
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.OpenedAt, nil
}

func (t *tradingTx) CreateOperation(ctx context.Context, operation *domain.Operation) error {
	return t.tx.WithContext(ctx).Create(mappers.ToGORMOperation(operation)).Error
}

func (t *tradingTx) GetOperationForUpdate(ctx context.Context, operationID string) (*domain.Operation, error) {
	var model models.OperationModel
	if err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", operationID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainOperation(&model), nil
}

func (t *tradingTx) CloseOperation(ctx context.Context, operation *domain.Operation) error {
	model := mappers.ToGORMOperation(operation)
	res := t.tx.WithContext(ctx).Model(&models.OperationModel{}).
		Where("id = ? AND status = ?", operation.ID, string(domain.OperationOpen)).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"closed_at":      model.ClosedAt,
			"exit_price":     model.ExitPrice,
			"pnl":            model.PnL,
			"pnl_percentage": model.PnLPercentage,
			"close_reason":   model.CloseReason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyClosed
	}
	return nil
}

func (t *tradingTx) GetActiveLinkByUserID(ctx context.Context, userID string) (*domain.AffiliateLink, error) {
	var model models.AffiliateLinkModel
	err := t.tx.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.LinkActive)).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainAffiliateLink(&model), nil
}

func (t *tradingTx) GetAffiliateByID(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	var model models.AffiliateModel
	if err := t.tx.WithContext(ctx).First(&model, "id = ?", affiliateID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainAffiliate(&model), nil
}

func (t *tradingTx) CreateCommission(ctx context.Context, commission *domain.Commission) error {
	return t.tx.WithContext(ctx).Create(mappers.ToGORMCommission(commission)).Error
}

func (t *tradingTx) AddAffiliateTotals(ctx context.Context, affiliateID string, amount decimal.Decimal) error {
	res := t.tx.WithContext(ctx).Model(&models.AffiliateModel{}).
		Where("id = ?", affiliateID).
		Updates(map[string]interface{}{
			"total_commission":   gorm.Expr("total_commission + ?", amount),
			"pending_commission": gorm.Expr("pending_commission + ?", amount),
			"commission_count":   gorm.Expr("commission_count + 1"),
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (t *tradingTx) GetLinkForUpdate(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	var model models.AffiliateLinkModel
	if err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", linkID).Error; err != nil {
		return nil, notFound(err)
	}
	return mappers.ToDomainAffiliateLink(&model), nil
}

func (t *tradingTx) GetLinksByUserID(ctx context.Context, userID string, statuses ...domain.AffiliateLinkStatus) ([]*domain.AffiliateLink, error) {
	query := t.tx.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query = query.Where("status IN ?", values)
	}

	var linkModels []models.AffiliateLinkModel
	if err := query.Order("requested_at ASC").Find(&linkModels).Error; err != nil {
		return nil, err
	}
	links := make([]*domain.AffiliateLink, len(linkModels))
	for i := range linkModels {
		links[i] = mappers.ToDomainAffiliateLink(&linkModels[i])
	}
	return links, nil
}

func (t *tradingTx) CreateLink(ctx context.Context, link *domain.AffiliateLink) error {
	return t.tx.WithContext(ctx).Omit("Affiliate").Create(mappers.ToGORMAffiliateLink(link)).Error
}

func (t *tradingTx) UpdateLink(ctx context.Context, link *domain.AffiliateLink) error {
	model := mappers.ToGORMAffiliateLink(link)
	return t.tx.WithContext(ctx).Model(&models.AffiliateLinkModel{}).
		Where("id = ?", link.ID).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"linked_at":           model.LinkedAt,
			"commission_eligible": model.CommissionEligible,
			"reason":              model.Reason,
			"updated_at":          model.UpdatedAt,
		}).Error
}

func (t *tradingTx) EnsureAffiliate(ctx context.Context, affiliateID string) error {
	now := time.Now()
	return t.tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.AffiliateModel{ID: affiliateID, CreatedAt: now, UpdatedAt: now}).Error
}
