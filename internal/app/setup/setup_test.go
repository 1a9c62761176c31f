package setup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/traders/active":
			fmt.Fprint(w, `{"traders":[{"user_id":"u1","available_balance":"500"},{"user_id":"u2","available_balance":"5"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"user not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func memoryConfig(t *testing.T, userService string) *config.SignalConfig {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.SignalDB.Driver = DriverMemory
	cfg.KafkaService.Enabled = false
	cfg.UserService.Address = userService
	return cfg
}

func TestMemoryWiringServesSignals(t *testing.T) {
	cfg := memoryConfig(t, newUserService(t).URL)

	deps, err := InitializeDependencies(cfg, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer deps.Close()
	assert.Nil(t, deps.Publisher)
	assert.Nil(t, deps.Subscriber)

	ucs, err := InitializeUseCases(deps)
	require.NoError(t, err)
	assert.Nil(t, InitializeConsumer(deps, ucs))

	router := InitializeRouter(deps, ucs)
	body := fmt.Sprintf(`{"signalKeyword":"signal long","symbol":"btc/usdt","price":"45000","timestamp":%q}`,
		time.Now().UTC().Format(time.RFC3339))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/signals", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Summary struct {
			UsersProcessed   int `json:"usersProcessed"`
			OperationsOpened int `json:"operationsOpened"`
			Skipped          int `json:"skipped"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Summary.UsersProcessed)
	assert.Equal(t, 1, resp.Summary.OperationsOpened)
	assert.Equal(t, 1, resp.Summary.Skipped)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/operations?symbol=BTCUSDT", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"u1"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownDriverFails(t *testing.T) {
	cfg := memoryConfig(t, "http://127.0.0.1:1")
	cfg.SignalDB.Driver = "sqlite"

	_, err := InitializeDependencies(cfg, nil, prometheus.NewRegistry())
	assert.ErrorContains(t, err, "unknown storage driver")
}
