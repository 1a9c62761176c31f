package memory

import (
	"context"
	"sort"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) GetLinkByID(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[linkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneLink(link), nil
}

func (s *Store) GetLinksByAffiliateID(ctx context.Context, affiliateID string) ([]*domain.AffiliateLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*domain.AffiliateLink, 0)
	for _, link := range s.links {
		if link.AffiliateID == affiliateID {
			result = append(result, cloneLink(link))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RequestedAt.Before(result[j].RequestedAt) })
	return result, nil
}

func (s *Store) GetAffiliateByID(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	affiliate, ok := s.affiliates[affiliateID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAffiliate(affiliate), nil
}

func (s *Store) SetAffiliateRate(ctx context.Context, affiliateID string, rate *decimal.Decimal) error {
	s.exclusive(func() {
		affiliate, ok := s.affiliates[affiliateID]
		if !ok {
			affiliate = &domain.Affiliate{ID: affiliateID, CreatedAt: time.Now()}
			s.affiliates[affiliateID] = affiliate
		}
		if rate == nil {
			affiliate.CommissionRate = nil
		} else {
			r := *rate
			affiliate.CommissionRate = &r
		}
		affiliate.UpdatedAt = time.Now()
	})
	return nil
}

func (s *Store) ExpirePendingLinks(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	s.exclusive(func() {
		for _, link := range s.links {
			if link.Status == domain.LinkPending && now.After(link.ExpiresAt) {
				link.Status = domain.LinkExpired
				link.Reason = "approval window elapsed"
				link.UpdatedAt = now
				n++
			}
		}
	})
	return n, nil
}

func (s *Store) GetCommissionByID(ctx context.Context, commissionID string) (*domain.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commissions[commissionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCommission(c), nil
}

func (s *Store) GetCommissionsByOperationID(ctx context.Context, operationID string) ([]*domain.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*domain.Commission, 0)
	for _, c := range s.commissions {
		if c.OperationID == operationID {
			result = append(result, cloneCommission(c))
		}
	}
	return result, nil
}

func (s *Store) ConfirmCommission(ctx context.Context, commissionID string, now time.Time) error {
	var err error
	s.exclusive(func() {
		c, ok := s.commissions[commissionID]
		if !ok {
			err = domain.ErrNotFound
			return
		}
		if c.Status != domain.CommissionPending {
			err = domain.ErrCommissionNotPending
			return
		}
		c.Status = domain.CommissionConfirmed
		c.UpdatedAt = now
	})
	return err
}

func (s *Store) ReserveForCompensation(ctx context.Context, affiliateID string, now time.Time) (decimal.Decimal, int64, error) {
	total := decimal.Zero
	var n int64
	s.exclusive(func() {
		for _, c := range s.commissions {
			if c.AffiliateID != affiliateID || c.Status != domain.CommissionConfirmed {
				continue
			}
			c.Status = domain.CommissionCompensated
			c.UpdatedAt = now
			total = total.Add(c.Amount)
			n++
		}
		if affiliate, ok := s.affiliates[affiliateID]; ok && n > 0 {
			affiliate.PendingCommission = affiliate.PendingCommission.Sub(total)
			affiliate.UpdatedAt = now
		}
	})
	return total, n, nil
}
