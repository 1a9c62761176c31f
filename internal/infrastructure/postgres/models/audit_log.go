package models

import "time"

type AuditLogModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Category  string    `gorm:"index;not null"`
	Subject   string    `gorm:"index"`
	Outcome   string
	Message   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (AuditLogModel) TableName() string {
	return "audit_logs"
}
