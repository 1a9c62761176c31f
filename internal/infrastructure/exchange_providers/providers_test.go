package exchangeproviders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBinanceProviderParsesTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"50000.12000000"}`))
	}))
	defer srv.Close()

	p := NewBinanceProvider(srv.URL, time.Second)
	price, err := p.GetPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "50000.12", price.String())
}

func TestBybitProviderReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":10001,"retMsg":"params error","result":{"list":[]}}`))
	}))
	defer srv.Close()

	p := NewBybitProvider(srv.URL, time.Second)
	_, err := p.GetPrice(context.Background(), "BTCUSDT")
	assert.ErrorContains(t, err, "params error")
}

func TestChainProviderFallsBack(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"category":"linear","list":[{"symbol":"ETHUSDT","lastPrice":"3100.5"}]}}`))
	}))
	defer working.Close()

	chain := NewChainProvider(zap.NewNop(),
		NewBinanceProvider(failing.URL, time.Second),
		NewBybitProvider(working.URL, time.Second),
	)
	price, err := chain.GetPrice(context.Background(), "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, "3100.5", price.String())
}

func TestChainProviderAllFailing(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	chain := NewChainProvider(zap.NewNop(), NewBinanceProvider(failing.URL, time.Second))
	_, err := chain.GetPrice(context.Background(), "BTCUSDT")
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}
