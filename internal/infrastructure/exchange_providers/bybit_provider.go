package exchangeproviders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

type BybitProvider struct {
	client  *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

type bybitTickerResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	} `json:"result"`
}

func NewBybitProvider(baseURL string, timeout time.Duration) *BybitProvider {
	return &BybitProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		breaker: newBreaker("bybit-price"),
	}
}

func (b *BybitProvider) GetName() string {
	return "bybit"
}

func (b *BybitProvider) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	res, err := b.breaker.Execute(func() (interface{}, error) {
		return b.fetch(ctx, symbol)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return res.(decimal.Decimal), nil
}

func (b *BybitProvider) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s?category=linear&symbol=%s", b.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get ticker from bybit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("bybit API returned status: %d", resp.StatusCode)
	}

	var ticker bybitTickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse bybit response: %w", err)
	}
	if ticker.RetCode != 0 {
		return decimal.Zero, fmt.Errorf("bybit API error: %s", ticker.RetMsg)
	}
	if len(ticker.Result.List) == 0 {
		return decimal.Zero, fmt.Errorf("no bybit ticker for %s", symbol)
	}

	price, err := decimal.NewFromString(ticker.Result.List[0].LastPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid bybit price: %w", err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive bybit price for %s", symbol)
	}
	return price, nil
}
