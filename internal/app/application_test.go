package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/config"
)

type upstream struct {
	mu           sync.Mutex
	weatherCalls int
	messages     []map[string]interface{}
}

func (u *upstream) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.weatherCalls++
		u.mu.Unlock()

		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"name": "Kyiv",
			"weather": [{"main": "Clear", "description": "clear sky"}],
			"main": {"temp": 21.4, "feels_like": 20.9, "pressure": 1015, "humidity": 40},
			"wind": {"speed": 3.1, "deg": 90},
			"sys": {"country": "UA", "sunrise": 1700000000, "sunset": 1700033000},
			"timezone": 7200,
			"dt": 1700000000
		}`)
	})
	mux.HandleFunc("/bottest-token/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		u.mu.Lock()
		u.messages = append(u.messages, body)
		u.mu.Unlock()

		_, _ = io.WriteString(w, `{"ok": true, "result": {}}`)
	})
	return mux
}

func testConfig(t *testing.T, upstreamURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "weatherbot.db"),
		},
		Weather: config.WeatherConfig{
			OpenWeatherMapKey:       "test-key",
			DataBaseURL:             upstreamURL + "/data/2.5",
			GeoBaseURL:              upstreamURL + "/geo/1.0",
			RequestTimeoutSeconds:   5,
			BreakerFailureThreshold: 5,
			BreakerOpenSeconds:      30,
			EnableLogging:           true,
		},
		Telegram: config.TelegramConfig{
			BotToken:   "test-token",
			APIBaseURL: upstreamURL,
		},
		Cache: config.CacheConfig{
			Type:                 config.CacheTypeMemory,
			TTLSeconds:           300,
			SweepIntervalMinutes: 15,
		},
		Scheduler: config.SchedulerConfig{
			Enabled:             false,
			CronSpec:            "* * * * *",
			Timezone:            "UTC",
			FetchTimeoutSeconds: 5,
			SendTimeoutSeconds:  5,
			MaxConcurrency:      4,
			QueueSize:           4,
		},
		Log: config.LogConfig{Level: "error", Format: "text"},
	}
}

func newTestApplication(t *testing.T) (*Application, *upstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := &upstream{}
	server := httptest.NewServer(up.handler(t))
	t.Cleanup(server.Close)

	cfg := testConfig(t, server.URL)
	deps, err := NewDependencyContainer(cfg, DependencyOptions{
		Registerer: prometheus.NewRegistry(),
		LogOutput:  io.Discard,
	})
	require.NoError(t, err)

	app, err := NewApplicationWithDependencies(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Cleanup() })

	require.NoError(t, app.Bootstrap(context.Background()))
	return app, up
}

func TestApplication_SubscribeAndDispatch(t *testing.T) {
	app, up := newTestApplication(t)
	router := app.GetRouter()

	for _, externalID := range []string{"100", "200"} {
		body, _ := json.Marshal(map[string]interface{}{
			"external_id": externalID,
			"city":        "Kyiv",
			"type":        "weather",
			"times":       []string{"07:30"},
		})
		req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	report, err := app.GetNotificationUseCase().DispatchDue(context.Background(), "07:30")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Due)
	assert.Equal(t, 2, report.Sent)

	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Equal(t, 1, up.weatherCalls)
	require.Len(t, up.messages, 2)
	for _, msg := range up.messages {
		assert.Equal(t, "HTML", msg["parse_mode"])
		assert.Contains(t, msg["text"], "☀️ <b>Kyiv</b>")
	}
}

func TestApplication_NothingDueAtOtherMinute(t *testing.T) {
	app, up := newTestApplication(t)

	_, err := app.GetSubscriptionUseCase().GetOrCreateUser(context.Background(), "100")
	require.NoError(t, err)

	report, err := app.GetNotificationUseCase().DispatchDue(context.Background(), "07:31")
	require.NoError(t, err)
	assert.Zero(t, report.Due)
	assert.Zero(t, up.weatherCalls)
}

func TestApplication_TypesAndHealth(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.GetRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/types", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var types struct {
		Types []struct {
			Code string `json:"code"`
		} `json:"types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	assert.Len(t, types.Types, 6)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"circuit":"closed"`)
}

func TestApplication_MetricsExposed(t *testing.T) {
	app, _ := newTestApplication(t)

	_, err := app.GetNotificationUseCase().DispatchDue(context.Background(), "07:30")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scheduler_tick_duration_seconds")
}

func TestApplication_ShutdownReleasesResourcesWhenContextExpires(t *testing.T) {
	app, _ := newTestApplication(t)

	active := make(chan struct{}, 1)
	app.httpServer.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateActive {
			select {
			case active <- struct{}{}:
			default:
			}
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.httpServer.Serve(ln) }()

	// A request with unfinished headers keeps the connection active.
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = io.WriteString(conn, "GET /api/health HTTP/1.1\r\n")
	require.NoError(t, err)

	select {
	case <-active:
	case <-time.After(2 * time.Second):
		t.Fatal("connection never became active")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = app.Shutdown(ctx)
	require.ErrorIs(t, err, context.Canceled)

	sqlDB, err := app.deps.Database().DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.PingContext(context.Background()), "database pool must be closed")
}
