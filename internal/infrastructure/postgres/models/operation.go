package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationModel struct {
	ID            string              `gorm:"primaryKey;type:uuid"`
	UserID        string              `gorm:"index:idx_operation_user_status;index:idx_operation_user_symbol;not null"`
	Symbol        string              `gorm:"index:idx_operation_user_symbol;not null"`
	Side          string              `gorm:"not null"`
	EntryPrice    decimal.Decimal     `gorm:"type:numeric(36,18);not null"`
	Quantity      decimal.Decimal     `gorm:"type:numeric(36,18);not null"`
	Leverage      int32               `gorm:"not null"`
	TakeProfit    decimal.Decimal     `gorm:"type:numeric(36,18)"`
	StopLoss      decimal.Decimal     `gorm:"type:numeric(36,18)"`
	Status        string              `gorm:"index:idx_operation_user_status;not null"`
	OpenedAt      time.Time           `gorm:"index:idx_operation_user_symbol;not null"`
	ClosedAt      *time.Time          `gorm:"index"`
	ExitPrice     decimal.NullDecimal `gorm:"type:numeric(36,18)"`
	PnL           decimal.Decimal     `gorm:"column:pnl;type:numeric(36,18);default:0"`
	PnLPercentage decimal.Decimal     `gorm:"column:pnl_percentage;type:numeric(18,4);default:0"`
	CloseReason   string
	SignalID      *string             `gorm:"type:uuid"`
}

func (OperationModel) TableName() string {
	return "operations"
}
