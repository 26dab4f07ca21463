package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wadigest/internal/config"
)

func testConfig(t *testing.T, gatewayURL string) *config.Config {
	t.Helper()
	return &config.Config{
		GreenAPI: config.GreenAPIConfig{
			BaseURL:    gatewayURL,
			InstanceID: "1",
			Token:      "tok",
			Timeout:    5 * time.Second,
		},
		Store: config.StoreConfig{
			Driver: "sqlite",
			URL:    filepath.Join(t.TempDir(), "app.db"),
		},
		Gemini: config.GeminiConfig{
			APIKey:          "key",
			ModelName:       config.DefaultGeminiModel,
			Temperature:     config.DefaultGeminiTemperature,
			MaxOutputTokens: config.DefaultGeminiMaxOutputTokens,
			Timeout:         time.Second,
		},
		Harvest: config.HarvestConfig{ChatID: "c@g.us", Count: 10, Lookback: 24 * time.Hour},
		Digest:  config.DigestConfig{TargetChatID: "d@g.us"},
		Scheduler: config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
			config.TaskSQLMaintenance: {Enabled: true, Schedule: "0 0 4 * * 0"},
		}},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestApp_RunTask(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer gw.Close()

	a := newTestApp(t, testConfig(t, gw.URL))

	assert.Equal(t, []string{
		config.TaskHarvestMessages,
		config.TaskPublishDigest,
		config.TaskSQLMaintenance,
		config.TaskSyncGroups,
	}, a.TaskNames())

	require.NoError(t, a.RunTask(context.Background(), config.TaskHarvestMessages))
	require.NoError(t, a.RunTask(context.Background(), config.TaskSyncGroups))
	require.NoError(t, a.RunTask(context.Background(), config.TaskPublishDigest), "empty store is a no-op")
	require.NoError(t, a.RunTask(context.Background(), config.TaskSQLMaintenance))

	err := a.RunTask(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownTask)
}

func TestApp_RunTaskFailure(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer gw.Close()

	a := newTestApp(t, testConfig(t, gw.URL))
	assert.Error(t, a.RunTask(context.Background(), config.TaskHarvestMessages))
}

func TestNew_TelegramMirror(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Telegram = config.TelegramConfig{Token: "123456789:abc", ChatID: -1001}
	newTestApp(t, cfg)
}

func TestNew_BadStore(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Store.Driver = "oracle"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestApp_ServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Server.Addr = "127.0.0.1:0"
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Serve(ctx) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestApp_ServeFailsWithoutRedis(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Scheduler.Redis = config.RedisConfig{Addr: "127.0.0.1:1", LockTTL: time.Minute}
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, a.Serve(ctx))
}
