package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AffiliateModel struct {
	ID                string              `gorm:"primaryKey"`
	CommissionRate    decimal.NullDecimal `gorm:"type:numeric(10,6)"`
	TotalCommission   decimal.Decimal     `gorm:"type:numeric(36,18);default:0"`
	PendingCommission decimal.Decimal     `gorm:"type:numeric(36,18);default:0"`
	CommissionCount   int64               `gorm:"default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (AffiliateModel) TableName() string {
	return "affiliates"
}

type AffiliateLinkModel struct {
	ID                 string         `gorm:"primaryKey"`
	AffiliateID        string         `gorm:"index;not null"`
	Affiliate          AffiliateModel `gorm:"foreignKey:AffiliateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	UserID             string         `gorm:"index:idx_link_user_status;not null"`
	Status             string         `gorm:"index:idx_link_user_status;not null"`
	RequestedAt        time.Time      `gorm:"not null"`
	ExpiresAt          time.Time      `gorm:"index;not null"`
	LinkedAt           *time.Time
	CommissionEligible bool           `gorm:"default:false"`
	Reason             string
	UpdatedAt          time.Time
}

func (AffiliateLinkModel) TableName() string {
	return "affiliate_links"
}

type CommissionModel struct {
	ID           string          `gorm:"primaryKey;type:uuid"`
	AffiliateID  string          `gorm:"index:idx_commission_affiliate_status;uniqueIndex:idx_commission_operation_affiliate;not null"`
	UserID       string          `gorm:"not null"`
	OperationID  string          `gorm:"uniqueIndex:idx_commission_operation_affiliate;type:uuid;not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(36,18);not null"`
	Rate         decimal.Decimal `gorm:"type:numeric(10,6);not null"`
	SourceProfit decimal.Decimal `gorm:"type:numeric(36,18);not null"`
	Status       string          `gorm:"index:idx_commission_affiliate_status;not null"`
	CreatedAt    time.Time       `gorm:"index"`
	UpdatedAt    time.Time
}

func (CommissionModel) TableName() string {
	return "commissions"
}
