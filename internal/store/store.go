// Package store persists bots and their trade history. Two implementations
// exist: a Postgres-backed store for production and an in-memory store for
// tests and ephemeral runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// ErrNotFound is returned when a requested bot or trade does not exist.
var ErrNotFound = errors.New("store: not found")

// TradeFilter narrows a trade history query. Zero-valued fields are ignored.
type TradeFilter struct {
	BotID         string
	Side          bot.Side
	Status        bot.TradeStatus
	Symbol        string
	CreatedBefore time.Time
}

// BotStore handles bot configuration and state persistence.
type BotStore interface {
	// GetBot returns the bot with the given ID, or ErrNotFound.
	GetBot(ctx context.Context, id string) (*bot.Bot, error)
	// SaveBot inserts or updates the bot.
	SaveBot(ctx context.Context, b *bot.Bot) error
	// ListBots returns all bots ordered by creation time.
	ListBots(ctx context.Context) ([]*bot.Bot, error)
}

// TradeStore handles the append-only trade ledger.
type TradeStore interface {
	// InsertTrade records a new trade.
	InsertTrade(ctx context.Context, t *bot.Trade) error
	// UpdateTrade rewrites the mutable columns of an existing trade, or
	// returns ErrNotFound.
	UpdateTrade(ctx context.Context, t *bot.Trade) error
	// FindTrades returns trades matching the filter ordered by creation time
	// ascending. A limit of 0 means no limit.
	FindTrades(ctx context.Context, f TradeFilter, limit int) ([]*bot.Trade, error)
}

// Store is the combined persistence surface the engine depends on.
type Store interface {
	BotStore
	TradeStore
}
