package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/traders/active", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"traders":[{"user_id":"u1","available_balance":"150.25"},{"user_id":"u2","available_balance":"5"}]}`))
	})
	mux.HandleFunc("/users/traders/u1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user_id":"u1","available_balance":"42.5"}`))
	})
	mux.HandleFunc("/users/u1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"u1","created_at":"2024-01-01T10:00:00Z"}`))
	})
	mux.HandleFunc("/users/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database unavailable"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestListActiveTraders(t *testing.T) {
	srv := newUserService(t)
	c := NewHTTPUserClient(srv.URL, time.Second)

	traders, err := c.ListActiveTraders(context.Background())
	require.NoError(t, err)
	require.Len(t, traders, 2)
	assert.Equal(t, "u1", traders[0].UserID)
	assert.Equal(t, "150.25", traders[0].AvailableBalance.String())
}

func TestGetUser(t *testing.T) {
	srv := newUserService(t)
	c := NewHTTPUserClient(srv.URL, time.Second)

	user, err := c.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), user.CreatedAt.UTC())

	_, err = c.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.GetUser(context.Background(), "broken")
	assert.EqualError(t, err, "database unavailable")
}

func TestGetTrader(t *testing.T) {
	srv := newUserService(t)
	c := NewHTTPUserClient(srv.URL, time.Second)

	trader, err := c.GetTrader(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", trader.UserID)
	assert.Equal(t, "42.5", trader.AvailableBalance.String())

	_, err = c.GetTrader(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
