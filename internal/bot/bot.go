// Package bot defines the trading bot entity and its persisted state.
package bot

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a bot. It is owned exclusively by
// the scheduler; nothing else writes it.
type Status string

const (
	// StatusStopped is the initial state and the state after an explicit stop.
	StatusStopped Status = "stopped"
	// StatusRunning means the bot has a live periodic evaluation task.
	StatusRunning Status = "running"
	// StatusPaused means the task is cancelled but the bot can be resumed.
	StatusPaused Status = "paused"
	// StatusError means an evaluation cycle failed; the task is cancelled and
	// the bot does not auto-retry.
	StatusError Status = "error"
)

// Allocation is the capital ceiling a bot may deploy.
type Allocation struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Performance holds the derived aggregate metrics for a bot. It is recomputed
// from the trade history after every evaluation cycle, never hand-edited.
type Performance struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	TotalPnl      float64 `json:"total_pnl"`
	MaxDrawdown   float64 `json:"max_drawdown"`
}

// Bot is a configured, independently scheduled automated trading unit bound
// to one exchange account, symbol and strategy.
type Bot struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`   // trading pair, e.g. "BTC/USDT"
	Strategy   string         `json:"strategy"` // stable strategy identifier
	Status     Status         `json:"status"`
	Settings   map[string]any `json:"settings"`
	Allocation Allocation     `json:"allocation"`

	Performance Performance `json:"performance"`

	// Encrypted exchange credentials, resolved through credential.Decryptor
	// when the gateway is created.
	APIKeyCiphertext    string `json:"-"`
	APISecretCiphertext string `json:"-"`

	LastExecution time.Time  `json:"last_execution"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	StoppedAt     *time.Time `json:"stopped_at,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BaseCurrency returns the base asset of the bot's symbol ("BTC" for
// "BTC/USDT"). Returns the whole symbol if it has no separator.
func (b *Bot) BaseCurrency() string {
	base, _, _ := strings.Cut(b.Symbol, "/")
	return base
}

// QuoteCurrency returns the quote asset of the bot's symbol ("USDT" for
// "BTC/USDT").
func (b *Bot) QuoteCurrency() string {
	_, quote, _ := strings.Cut(b.Symbol, "/")
	return quote
}
