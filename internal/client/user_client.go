package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/shopspring/decimal"
)

// HTTPUserClient reads users, balances and trading credentials from the user service.
type HTTPUserClient struct {
	Address string
	client  *http.Client
}

type activeTradersResponse struct {
	Traders []struct {
		UserID           string          `json:"user_id"`
		AvailableBalance decimal.Decimal `json:"available_balance"`
	} `json:"traders"`
}

type traderResponse struct {
	UserID           string          `json:"user_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

type userResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPUserClient(address string, timeout time.Duration) *HTTPUserClient {
	return &HTTPUserClient{
		Address: address,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPUserClient) ListActiveTraders(ctx context.Context) ([]domain.Trader, error) {
	var resp activeTradersResponse
	if err := c.get(ctx, "/users/traders/active", &resp); err != nil {
		return nil, err
	}
	traders := make([]domain.Trader, 0, len(resp.Traders))
	for _, t := range resp.Traders {
		traders = append(traders, domain.Trader{UserID: t.UserID, AvailableBalance: t.AvailableBalance})
	}
	return traders, nil
}

func (c *HTTPUserClient) GetTrader(ctx context.Context, userID string) (*domain.Trader, error) {
	var resp traderResponse
	if err := c.get(ctx, "/users/traders/"+url.PathEscape(userID), &resp); err != nil {
		return nil, err
	}
	return &domain.Trader{UserID: resp.UserID, AvailableBalance: resp.AvailableBalance}, nil
}

func (c *HTTPUserClient) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var resp userResponse
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), &resp); err != nil {
		return nil, err
	}
	return &domain.User{ID: resp.ID, CreatedAt: resp.CreatedAt}, nil
}

func (c *HTTPUserClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Address+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	response, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			return fmt.Errorf("user service returned status %d", response.StatusCode)
		}
		return errors.New(errResp.Error)
	}

	return json.Unmarshal(body, out)
}
