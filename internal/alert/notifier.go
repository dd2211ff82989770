// Package alert handles sending notifications about bot lifecycle changes
// and trade fills.
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// Notifier is the interface for sending alert messages.
type Notifier interface {
	Send(message string) error
	Close() error
}

// NoOpNotifier is a notifier that does nothing. It is used when alerting is
// disabled.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send does nothing and returns nil.
func (n *NoOpNotifier) Send(message string) error {
	return nil
}

// Close does nothing and returns nil.
func (n *NoOpNotifier) Close() error {
	return nil
}

// WebhookNotifier posts messages as JSON to a configured webhook URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send implements Notifier.
func (n *WebhookNotifier) Send(message string) error {
	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode alert payload: %w", err)
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to post alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close implements Notifier.
func (n *WebhookNotifier) Close() error {
	n.client.CloseIdleConnections()
	return nil
}

// BotStatusMessage formats a lifecycle-transition notification.
func BotStatusMessage(b *bot.Bot, previous bot.Status) string {
	msg := fmt.Sprintf("bot %q (%s): %s -> %s", b.Name, b.Symbol, previous, b.Status)
	if b.Status == bot.StatusError && b.ErrorMessage != "" {
		msg += ": " + b.ErrorMessage
	}
	return msg
}

// TradeFilledMessage formats a fill notification.
func TradeFilledMessage(t *bot.Trade) string {
	return fmt.Sprintf("trade filled: %s %s %.8f %s at %.4f (pnl %.4f)",
		t.Side, t.Type, t.Amount, t.Symbol, t.Price, t.Pnl)
}
