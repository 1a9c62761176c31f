package domain

import (
	"context"
	"time"
)

type AuditCategory string

const (
	AuditSentimentGate AuditCategory = "sentiment_gate"
	AuditEligibility   AuditCategory = "eligibility"
	AuditSignal        AuditCategory = "signal"
	AuditAffiliate     AuditCategory = "affiliate"
)

type AuditLog struct {
	ID        string
	Category  AuditCategory
	Subject   string
	Outcome   string
	Message   string
	CreatedAt time.Time
}

type AuditRepository interface {
	CreateAuditLog(ctx context.Context, log *AuditLog) error
}
