package memory

import (
	"context"
	"sort"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

func (s *Store) GetOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.operations[operationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOperation(op), nil
}

func (s *Store) FindOpenOperations(ctx context.Context, filter domain.OperationFilter) ([]*domain.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*domain.Operation, 0)
	for _, op := range s.operations {
		if op.Status != domain.OperationOpen {
			continue
		}
		if filter.UserID != "" && op.UserID != filter.UserID {
			continue
		}
		if filter.Symbol != "" && op.Symbol != filter.Symbol {
			continue
		}
		if filter.Side != "" && op.Side != filter.Side {
			continue
		}
		result = append(result, cloneOperation(op))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OpenedAt.Equal(result[j].OpenedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].OpenedAt.Before(result[j].OpenedAt)
	})
	return result, nil
}

func (s *Store) ListOpenSymbols(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, op := range s.operations {
		if op.Status == domain.OperationOpen {
			seen[op.Symbol] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Operations returns every stored operation, for inspection.
func (s *Store) Operations() []*domain.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Operation, 0, len(s.operations))
	for _, op := range s.operations {
		out = append(out, cloneOperation(op))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// Commissions returns every stored commission, for inspection.
func (s *Store) Commissions() []*domain.Commission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Commission, 0, len(s.commissions))
	for _, c := range s.commissions {
		out = append(out, cloneCommission(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
