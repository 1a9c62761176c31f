package exchangeproviders

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChainProvider asks each provider in order and returns the first price obtained.
type ChainProvider struct {
	providers []domain.PriceProvider
	log       *zap.Logger
}

func NewChainProvider(log *zap.Logger, providers ...domain.PriceProvider) *ChainProvider {
	return &ChainProvider{providers: providers, log: log}
}

func (c *ChainProvider) GetName() string {
	return "chain"
}

func (c *ChainProvider) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var errs []error
	for _, p := range c.providers {
		price, err := p.GetPrice(ctx, symbol)
		if err == nil {
			return price, nil
		}
		c.log.Warn("price provider failed",
			zap.String("provider", p.GetName()),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.GetName(), err))
	}
	return decimal.Zero, fmt.Errorf("%w for %s: %w", domain.ErrPriceUnavailable, symbol, errors.Join(errs...))
}
