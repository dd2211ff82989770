package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

func TestNoOpNotifier(t *testing.T) {
	n := NewNoOpNotifier()
	assert.NoError(t, n.Send("ignored"))
	assert.NoError(t, n.Close())
}

func TestWebhookNotifierSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	defer n.Close()

	require.NoError(t, n.Send("bot stopped"))
	assert.Equal(t, "bot stopped", got["text"])
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	defer n.Close()

	assert.Error(t, n.Send("boom"))
}

func TestBotStatusMessage(t *testing.T) {
	b := &bot.Bot{Name: "grid bot", Symbol: "BTC/USDT", Status: bot.StatusError, ErrorMessage: "ticker fetch failed"}
	msg := BotStatusMessage(b, bot.StatusRunning)
	assert.Contains(t, msg, "grid bot")
	assert.Contains(t, msg, "running -> error")
	assert.Contains(t, msg, "ticker fetch failed")
}

func TestTradeFilledMessage(t *testing.T) {
	tr := &bot.Trade{Side: bot.SideSell, Type: bot.OrderTypeLimit, Amount: 0.5, Symbol: "BTC/USDT", Price: 101, Pnl: 2.5}
	msg := TradeFilledMessage(tr)
	assert.Contains(t, msg, "sell")
	assert.Contains(t, msg, "BTC/USDT")
	assert.Contains(t, msg, "2.5")
}
