package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SignalModel struct {
	ID               string              `gorm:"primaryKey;type:uuid"`
	RawPayload       string              `gorm:"type:text;not null"`
	Keyword          string              `gorm:"not null"`
	Category         string              `gorm:"not null"`
	Direction        string              `gorm:"not null"`
	Strength         string
	Symbol           string              `gorm:"index"`
	Price            decimal.NullDecimal `gorm:"type:numeric(36,18)"`
	Timestamp        time.Time
	ReceivedAt       time.Time           `gorm:"index:idx_signal_status_received"`
	Source           string
	Status           string              `gorm:"index:idx_signal_status_received;not null"`
	ProcessingResult string              `gorm:"type:text"`
}

func (SignalModel) TableName() string {
	return "signals"
}
