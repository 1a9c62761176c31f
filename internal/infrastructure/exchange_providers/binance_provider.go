package exchangeproviders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

type BinanceProvider struct {
	client  *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func NewBinanceProvider(baseURL string, timeout time.Duration) *BinanceProvider {
	return &BinanceProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		breaker: newBreaker("binance-price"),
	}
}

func (b *BinanceProvider) GetName() string {
	return "binance"
}

func (b *BinanceProvider) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	res, err := b.breaker.Execute(func() (interface{}, error) {
		return b.fetch(ctx, symbol)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return res.(decimal.Decimal), nil
}

func (b *BinanceProvider) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s?symbol=%s", b.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get price from binance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("binance API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read response body: %w", err)
	}

	var ticker binanceTicker
	if err := json.Unmarshal(body, &ticker); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse binance response: %w", err)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid binance price %q: %w", ticker.Price, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive binance price for %s", symbol)
	}
	return price, nil
}
