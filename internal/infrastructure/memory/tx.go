package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

var errTxDone = errors.New("transaction already finished")

type tx struct {
	s    *Store
	undo []func()
	done bool
}

func (s *Store) BeginTx(ctx context.Context) (domain.TradingTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	return &tx{s: s}, nil
}

// remember records how to restore key k of m to its state before the write.
func remember[V any](t *tx, m map[string]V, k string) {
	prev, existed := m[k]
	t.undo = append(t.undo, func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}

func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.undo = nil
	t.s.txMu.Unlock()
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.s.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()
	t.undo = nil
	t.s.txMu.Unlock()
	return nil
}

func (t *tx) LockUser(ctx context.Context, userID string) error {
	if t.done {
		return errTxDone
	}
	return ctx.Err()
}

func (t *tx) CountOpenOperations(ctx context.Context, userID string) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var n int64
	for _, op := range t.s.operations {
		if op.UserID == userID && op.Status == domain.OperationOpen {
			n++
		}
	}
	return n, nil
}

func (t *tx) LastOpenedAt(ctx context.Context, userID, symbol string) (*time.Time, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var last *time.Time
	for _, op := range t.s.operations {
		if op.UserID != userID || op.Symbol != symbol {
			continue
		}
		if last == nil || op.OpenedAt.After(*last) {
			openedAt := op.OpenedAt
			last = &openedAt
		}
	}
	return last, nil
}

func (t *tx) CreateOperation(ctx context.Context, operation *domain.Operation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, exists := t.s.operations[operation.ID]; exists {
		return fmt.Errorf("operation %s already exists", operation.ID)
	}
	remember(t, t.s.operations, operation.ID)
	t.s.operations[operation.ID] = cloneOperation(operation)
	return nil
}

func (t *tx) GetOperationForUpdate(ctx context.Context, operationID string) (*domain.Operation, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	op, ok := t.s.operations[operationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOperation(op), nil
}

func (t *tx) CloseOperation(ctx context.Context, operation *domain.Operation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	stored, ok := t.s.operations[operation.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != domain.OperationOpen {
		return domain.ErrAlreadyClosed
	}
	remember(t, t.s.operations, operation.ID)
	t.s.operations[operation.ID] = cloneOperation(operation)
	return nil
}

func (t *tx) GetActiveLinkByUserID(ctx context.Context, userID string) (*domain.AffiliateLink, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, link := range t.s.links {
		if link.UserID == userID && link.Status == domain.LinkActive {
			return cloneLink(link), nil
		}
	}
	return nil, nil
}

func (t *tx) GetAffiliateByID(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	affiliate, ok := t.s.affiliates[affiliateID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAffiliate(affiliate), nil
}

func (t *tx) CreateCommission(ctx context.Context, commission *domain.Commission) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, c := range t.s.commissions {
		if c.OperationID == commission.OperationID && c.AffiliateID == commission.AffiliateID {
			return fmt.Errorf("commission for operation %s already exists", commission.OperationID)
		}
	}
	remember(t, t.s.commissions, commission.ID)
	t.s.commissions[commission.ID] = cloneCommission(commission)
	return nil
}

func (t *tx) AddAffiliateTotals(ctx context.Context, affiliateID string, amount decimal.Decimal) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	affiliate, ok := t.s.affiliates[affiliateID]
	if !ok {
		return domain.ErrNotFound
	}
	remember(t, t.s.affiliates, affiliateID)
	updated := cloneAffiliate(affiliate)
	updated.TotalCommission = updated.TotalCommission.Add(amount)
	updated.PendingCommission = updated.PendingCommission.Add(amount)
	updated.CommissionCount++
	updated.UpdatedAt = time.Now()
	t.s.affiliates[affiliateID] = updated
	return nil
}

func (t *tx) GetLinkForUpdate(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	link, ok := t.s.links[linkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneLink(link), nil
}

func (t *tx) GetLinksByUserID(ctx context.Context, userID string, statuses ...domain.AffiliateLinkStatus) ([]*domain.AffiliateLink, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	result := make([]*domain.AffiliateLink, 0)
	for _, link := range t.s.links {
		if link.UserID != userID {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, link.Status) {
			continue
		}
		result = append(result, cloneLink(link))
	}
	return result, nil
}

func hasStatus(statuses []domain.AffiliateLinkStatus, status domain.AffiliateLinkStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (t *tx) CreateLink(ctx context.Context, link *domain.AffiliateLink) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, exists := t.s.links[link.ID]; exists {
		return fmt.Errorf("affiliate link %s already exists", link.ID)
	}
	remember(t, t.s.links, link.ID)
	t.s.links[link.ID] = cloneLink(link)
	return nil
}

func (t *tx) UpdateLink(ctx context.Context, link *domain.AffiliateLink) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.links[link.ID]; !ok {
		return domain.ErrNotFound
	}
	remember(t, t.s.links, link.ID)
	t.s.links[link.ID] = cloneLink(link)
	return nil
}

func (t *tx) EnsureAffiliate(ctx context.Context, affiliateID string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.s.affiliates[affiliateID]; ok {
		return nil
	}
	remember(t, t.s.affiliates, affiliateID)
	now := time.Now()
	t.s.affiliates[affiliateID] = &domain.Affiliate{ID: affiliateID, CreatedAt: now, UpdatedAt: now}
	return nil
}
