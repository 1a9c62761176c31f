package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/sony/gobreaker"
)

// FearGreedClient reads the crypto Fear & Greed index.
type FearGreedClient struct {
	client  *http.Client
	url     string
	breaker *gobreaker.CircuitBreaker
}

type fngResponse struct {
	Name string `json:"name"`
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

func NewFearGreedClient(url string, timeout time.Duration) *FearGreedClient {
	st := gobreaker.Settings{Name: "fear-greed"}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 }
	st.Timeout = 2 * time.Minute
	return &FearGreedClient{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func (c *FearGreedClient) Name() string {
	return "alternative.me"
}

func (c *FearGreedClient) FetchIndex(ctx context.Context) (*domain.SentimentIndex, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSentimentSourceUnavailable, err)
	}
	return res.(*domain.SentimentIndex), nil
}

func (c *FearGreedClient) fetch(ctx context.Context) (*domain.SentimentIndex, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fear & greed API returned status: %d", resp.StatusCode)
	}

	var body fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to parse fear & greed response: %w", err)
	}
	if body.Metadata.Error != nil && *body.Metadata.Error != "" {
		return nil, fmt.Errorf("fear & greed API error: %s", *body.Metadata.Error)
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("fear & greed response has no data")
	}

	item := body.Data[0]
	value, err := strconv.Atoi(item.Value)
	if err != nil {
		return nil, fmt.Errorf("invalid index value %q: %w", item.Value, err)
	}
	if value < 0 || value > 100 {
		return nil, fmt.Errorf("index value %d out of range", value)
	}

	index := &domain.SentimentIndex{
		Value:          value,
		Classification: item.ValueClassification,
		Timestamp:      time.Now().UTC(),
	}
	if ts, err := strconv.ParseInt(item.Timestamp, 10, 64); err == nil {
		index.Timestamp = time.Unix(ts, 0).UTC()
	}
	return index, nil
}
