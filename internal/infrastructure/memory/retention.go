package memory

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

func (s *Store) PurgeSignals(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		referenced := make(map[string]struct{})
		for _, op := range s.operations {
			if op.Status == domain.OperationOpen && op.SignalID != nil {
				referenced[*op.SignalID] = struct{}{}
			}
		}
		for id, signal := range s.signals {
			if signal.Status == domain.SignalReceived || !signal.ReceivedAt.Before(before) {
				continue
			}
			if _, ok := referenced[id]; ok {
				continue
			}
			delete(s.signals, id)
			n++
		}
	})
	return n, nil
}

func (s *Store) PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		for id, l := range s.auditLogs {
			if l.CreatedAt.Before(before) {
				delete(s.auditLogs, id)
				n++
			}
		}
	})
	return n, nil
}

func (s *Store) PurgeSentimentReadings(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		latest := s.latestReadingLocked()
		for id, r := range s.readings {
			if r == latest || !r.CapturedAt.Before(before) {
				continue
			}
			delete(s.readings, id)
			n++
		}
	})
	return n, nil
}

func (s *Store) PurgeClosedOperations(ctx context.Context, before, commissionSince time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		protected := make(map[string]struct{})
		for _, c := range s.commissions {
			if c.Status != domain.CommissionCompensated || !c.CreatedAt.Before(commissionSince) {
				protected[c.OperationID] = struct{}{}
			}
		}
		for id, op := range s.operations {
			if op.Status != domain.OperationClosed || op.ClosedAt == nil || !op.ClosedAt.Before(before) {
				continue
			}
			if _, ok := protected[id]; ok {
				continue
			}
			delete(s.operations, id)
			n++
		}
	})
	return n, nil
}

func (s *Store) PurgeCompensatedCommissions(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		for id, c := range s.commissions {
			if c.Status == domain.CommissionCompensated && c.UpdatedAt.Before(before) {
				delete(s.commissions, id)
				n++
			}
		}
	})
	return n, nil
}

func (s *Store) PurgeInactiveLinks(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		for id, link := range s.links {
			if link.Status != domain.LinkRejected && link.Status != domain.LinkExpired {
				continue
			}
			if link.UpdatedAt.Before(before) {
				delete(s.links, id)
				n++
			}
		}
	})
	return n, nil
}
