package models

import "time"

type SentimentReadingModel struct {
	ID                string    `gorm:"primaryKey;type:uuid"`
	Value             int       `gorm:"not null"`
	Classification    string
	AllowedDirections string    `gorm:"not null"`
	CapturedAt        time.Time `gorm:"index;not null"`
	Source            string
	Note              string    `gorm:"type:text"`
}

func (SentimentReadingModel) TableName() string {
	return "sentiment_readings"
}
