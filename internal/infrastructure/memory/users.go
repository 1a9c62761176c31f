package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

// UserDirectory is a fixed set of users and trader balances.
type UserDirectory struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	traders map[string]decimal.Decimal
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		users:   make(map[string]domain.User),
		traders: make(map[string]decimal.Decimal),
	}
}

func (d *UserDirectory) PutUser(user domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

// PutTrader registers an active trader with the given available balance.
func (d *UserDirectory) PutTrader(userID string, balance decimal.Decimal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.traders[userID] = balance
	if _, ok := d.users[userID]; !ok {
		d.users[userID] = domain.User{ID: userID}
	}
}

func (d *UserDirectory) RemoveTrader(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.traders, userID)
}

func (d *UserDirectory) ListActiveTraders(ctx context.Context) ([]domain.Trader, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	traders := make([]domain.Trader, 0, len(d.traders))
	for id, balance := range d.traders {
		traders = append(traders, domain.Trader{UserID: id, AvailableBalance: balance})
	}
	sort.Slice(traders, func(i, j int) bool { return traders[i].UserID < traders[j].UserID })
	return traders, nil
}

func (d *UserDirectory) GetTrader(ctx context.Context, userID string) (*domain.Trader, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	balance, ok := d.traders[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Trader{UserID: userID, AvailableBalance: balance}, nil
}

func (d *UserDirectory) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}
