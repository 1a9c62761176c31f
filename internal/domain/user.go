package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Trader is an active user holding valid trading credentials.
type Trader struct {
	UserID           string
	AvailableBalance decimal.Decimal
}

type User struct {
	ID        string
	CreatedAt time.Time
}

// UserDirectory is the read-only user/balance/credentials store.
type UserDirectory interface {
	ListActiveTraders(ctx context.Context) ([]Trader, error)
	// GetTrader returns the current balance of one active trader, or
	// ErrNotFound when the user is no longer trading.
	GetTrader(ctx context.Context, userID string) (*Trader, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}
