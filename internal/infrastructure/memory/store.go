// Package memory is an in-process implementation of the repository ports. It backs the
// "memory" storage driver and the usecase tests.
package memory

import (
	"sync"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

// Store keeps every table in maps. Transactions are serialized through txMu, which
// gives the same guarantee the postgres store gets from per-user advisory locks.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	signals     map[string]*domain.Signal
	readings    map[string]*domain.SentimentReading
	operations  map[string]*domain.Operation
	links       map[string]*domain.AffiliateLink
	affiliates  map[string]*domain.Affiliate
	commissions map[string]*domain.Commission
	auditLogs   map[string]*domain.AuditLog
}

func NewStore() *Store {
	return &Store{
		signals:     make(map[string]*domain.Signal),
		readings:    make(map[string]*domain.SentimentReading),
		operations:  make(map[string]*domain.Operation),
		links:       make(map[string]*domain.AffiliateLink),
		affiliates:  make(map[string]*domain.Affiliate),
		commissions: make(map[string]*domain.Commission),
		auditLogs:   make(map[string]*domain.AuditLog),
	}
}

// exclusive runs fn as an implicit single-statement transaction.
func (s *Store) exclusive(fn func()) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func cloneSignal(in *domain.Signal) *domain.Signal {
	out := *in
	if in.Price != nil {
		p := *in.Price
		out.Price = &p
	}
	return &out
}

func cloneReading(in *domain.SentimentReading) *domain.SentimentReading {
	out := *in
	out.AllowedDirections = append([]domain.Direction(nil), in.AllowedDirections...)
	return &out
}

func cloneOperation(in *domain.Operation) *domain.Operation {
	out := *in
	if in.ClosedAt != nil {
		t := *in.ClosedAt
		out.ClosedAt = &t
	}
	if in.ExitPrice != nil {
		p := *in.ExitPrice
		out.ExitPrice = &p
	}
	if in.SignalID != nil {
		id := *in.SignalID
		out.SignalID = &id
	}
	return &out
}

func cloneLink(in *domain.AffiliateLink) *domain.AffiliateLink {
	out := *in
	if in.LinkedAt != nil {
		t := *in.LinkedAt
		out.LinkedAt = &t
	}
	return &out
}

func cloneAffiliate(in *domain.Affiliate) *domain.Affiliate {
	out := *in
	if in.CommissionRate != nil {
		r := *in.CommissionRate
		out.CommissionRate = &r
	}
	return &out
}

func cloneCommission(in *domain.Commission) *domain.Commission {
	out := *in
	return &out
}
