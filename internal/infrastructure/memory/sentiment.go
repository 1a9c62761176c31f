package memory

import (
	"context"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

func (s *Store) SaveReading(ctx context.Context, reading *domain.SentimentReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[reading.ID] = cloneReading(reading)
	return nil
}

func (s *Store) LatestReading(ctx context.Context) (*domain.SentimentReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.latestReadingLocked()
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return cloneReading(latest), nil
}

func (s *Store) latestReadingLocked() *domain.SentimentReading {
	var latest *domain.SentimentReading
	for _, r := range s.readings {
		if latest == nil || r.CapturedAt.After(latest.CapturedAt) {
			latest = r
		}
	}
	return latest
}

func (s *Store) CreateAuditLog(ctx context.Context, log *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := *log
	s.auditLogs[log.ID] = &entry
	return nil
}

// AuditLogs returns a copy of the audit trail, for inspection.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditLog, 0, len(s.auditLogs))
	for _, l := range s.auditLogs {
		out = append(out, *l)
	}
	return out
}
