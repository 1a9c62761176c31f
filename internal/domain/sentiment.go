package domain

import (
	"context"
	"time"
)

type SentimentReading struct {
	ID                string
	Value             int
	Classification    string
	AllowedDirections []Direction
	CapturedAt        time.Time
	Source            string
	Note              string
}

func (r *SentimentReading) Allows(direction Direction) bool {
	for _, d := range r.AllowedDirections {
		if d == direction {
			return true
		}
	}
	return false
}

// SentimentIndex is a raw reading as returned by an external sentiment source.
type SentimentIndex struct {
	Value          int
	Classification string
	Timestamp      time.Time
}

type SentimentSource interface {
	FetchIndex(ctx context.Context) (*SentimentIndex, error)
	Name() string
}

type SentimentRepository interface {
	SaveReading(ctx context.Context, reading *SentimentReading) error
	LatestReading(ctx context.Context) (*SentimentReading, error)
}
