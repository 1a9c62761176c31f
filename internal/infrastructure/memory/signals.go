package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

func (s *Store) CreateSignal(ctx context.Context, signal *domain.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.signals[signal.ID]; exists {
		return fmt.Errorf("signal %s already exists", signal.ID)
	}
	s.signals[signal.ID] = cloneSignal(signal)
	return nil
}

func (s *Store) GetSignalByID(ctx context.Context, signalID string) (*domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signal, ok := s.signals[signalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSignal(signal), nil
}

func (s *Store) FinalizeSignal(ctx context.Context, signalID string, status domain.SignalStatus, result string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	signal, ok := s.signals[signalID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if signal.Status != domain.SignalReceived {
		return false, nil
	}
	signal.Status = status
	signal.ProcessingResult = result
	return true, nil
}

func (s *Store) ExpireStaleSignals(ctx context.Context, receivedBefore time.Time, result string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, signal := range s.signals {
		if signal.Status == domain.SignalReceived && signal.ReceivedAt.Before(receivedBefore) {
			signal.Status = domain.SignalExpired
			signal.ProcessingResult = result
			n++
		}
	}
	return n, nil
}
