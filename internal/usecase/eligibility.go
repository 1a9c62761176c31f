package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

type EligibilityChecker interface {
	// Evaluate runs the checks against reader, which must be the transaction that
	// will insert the operation. It returns nil or a *domain.EligibilityError.
	Evaluate(ctx context.Context, reader domain.EligibilityReader, trader domain.Trader, symbol string) error
	CanOpen(ctx context.Context, trader domain.Trader, symbol string) (*EligibilityResult, error)
}

type EligibilityResult struct {
	Allowed          bool
	ReasonCode       string
	MinutesRemaining int64
	Required         decimal.Decimal
	Available        decimal.Decimal
}

type DefaultEligibilityChecker struct {
	Store             domain.TradingStore
	MaxOpenOperations int64
	SymbolCooldown    time.Duration
	MinTradeSize      decimal.Decimal
	Now               func() time.Time
}

func NewDefaultEligibilityChecker(store domain.TradingStore, cfg config.Trading) *DefaultEligibilityChecker {
	return &DefaultEligibilityChecker{
		Store:             store,
		MaxOpenOperations: int64(cfg.MaxOpenOperations),
		SymbolCooldown:    cfg.SymbolCooldown,
		MinTradeSize:      decimal.NewFromFloat(cfg.MinTradeSize),
		Now:               time.Now,
	}
}

func (c *DefaultEligibilityChecker) Evaluate(ctx context.Context, reader domain.EligibilityReader, trader domain.Trader, symbol string) error {
	open, err := reader.CountOpenOperations(ctx, trader.UserID)
	if err != nil {
		return fmt.Errorf("count open operations: %w", err)
	}
	if open >= c.MaxOpenOperations {
		return domain.NewEligibilityError(domain.ReasonMaxOperationsReached)
	}

	last, err := reader.LastOpenedAt(ctx, trader.UserID, symbol)
	if err != nil {
		return fmt.Errorf("last opened at: %w", err)
	}
	if last != nil {
		elapsed := c.Now().Sub(*last)
		if elapsed < c.SymbolCooldown {
			e := domain.NewEligibilityError(domain.ReasonIntervalNotReached)
			e.MinutesRemaining = minutesCeil(c.SymbolCooldown - elapsed)
			return e
		}
	}

	if trader.AvailableBalance.LessThan(c.MinTradeSize) {
		e := domain.NewEligibilityError(domain.ReasonInsufficientBalance)
		e.Required = c.MinTradeSize
		e.Available = trader.AvailableBalance
		return e
	}
	return nil
}

// CanOpen evaluates eligibility in a read-only transaction.
func (c *DefaultEligibilityChecker) CanOpen(ctx context.Context, trader domain.Trader, symbol string) (*EligibilityResult, error) {
	tx, err := c.Store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = c.Evaluate(ctx, tx, trader, symbol)
	if err == nil {
		return &EligibilityResult{Allowed: true}, nil
	}

	var eligibilityErr *domain.EligibilityError
	if !errors.As(err, &eligibilityErr) {
		return nil, err
	}
	return &EligibilityResult{
		Allowed:          false,
		ReasonCode:       eligibilityErr.Code,
		MinutesRemaining: eligibilityErr.MinutesRemaining,
		Required:         eligibilityErr.Required,
		Available:        eligibilityErr.Available,
	}, nil
}

func minutesCeil(d time.Duration) int64 {
	minutes := int64(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}
