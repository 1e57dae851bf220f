package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

func newTestTelegram(t *testing.T, handler http.HandlerFunc) ports.Notifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTelegramNotifierAdapter(TelegramNotifierParams{
		BotToken:   "123:abc",
		APIBaseURL: server.URL,
		Logger:     mocks.NopLogger{},
	})
}

func TestTelegramNotifier_Send(t *testing.T) {
	var received sendMessageRequest
	notifier := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	err := notifier.Send(context.Background(), "100500", "<b>Kyiv</b>")

	require.NoError(t, err)
	assert.Equal(t, "100500", received.ChatID)
	assert.Equal(t, "<b>Kyiv</b>", received.Text)
	assert.Equal(t, "HTML", received.ParseMode)
	assert.True(t, received.DisableWebPagePreview)
}

func TestTelegramNotifier_Rejected(t *testing.T) {
	notifier := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	})

	err := notifier.Send(context.Background(), "100500", "hello")

	require.Error(t, err)
	assert.True(t, errors.IsDeliveryError(err))
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestTelegramNotifier_UndecodableResponse(t *testing.T) {
	notifier := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	err := notifier.Send(context.Background(), "100500", "hello")

	assert.True(t, errors.IsDeliveryError(err))
}

func TestTelegramNotifier_EmptyRecipient(t *testing.T) {
	notifier := NewTelegramNotifierAdapter(TelegramNotifierParams{Logger: mocks.NopLogger{}})

	err := notifier.Send(context.Background(), "", "hello")

	assert.True(t, errors.IsValidationError(err))
}
