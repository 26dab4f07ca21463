package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wadigest/internal/config"
)

func TestNewTelegramBot_EmptyToken(t *testing.T) {
	_, err := NewTelegramBot("", nil)
	assert.Error(t, err)
}

func TestNewMirror_RequiresBothFields(t *testing.T) {
	_, err := NewMirror(config.TelegramConfig{Token: "123:abc"}, nil)
	assert.Error(t, err)
}

func TestTokenPrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "...", tokenPrefix("short"))
	assert.Equal(t, "12345678...", tokenPrefix("12345678:secret"))
}

func TestMirror_Publish(t *testing.T) {
	var gotChatID, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"), r.URL.Path)
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":42,"date":1700000000,"chat":{"id":-100123,"type":"supergroup"},"text":"x"}}`)
	}))
	defer srv.Close()

	m, err := NewMirror(config.TelegramConfig{Token: "123456789:test-token", ChatID: -100123}, nil, bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, m.Publish(context.Background(), "סיכום"))
	assert.Equal(t, "-100123", gotChatID)
	assert.Equal(t, "סיכום", gotText)
}

func TestMirror_PublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	m, err := NewMirror(config.TelegramConfig{Token: "123456789:test-token", ChatID: 1}, nil, bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	assert.Error(t, m.Publish(context.Background(), "x"))
}
