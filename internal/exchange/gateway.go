// Package exchange defines the gateway through which bots reach a trading
// venue. Implementations live in venue-specific subpackages.
package exchange

import (
	"context"
	"time"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// Ticker is the latest price information for a symbol.
type Ticker struct {
	Symbol string
	Last   float64
}

// Candle is one OHLCV bar.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Balance is the funds held in one currency.
type Balance struct {
	Free  float64
	Used  float64
	Total float64
}

// OrderStatus is the venue-side state of an order, normalized across venues.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order is the venue's view of an order.
type Order struct {
	ID     string
	Symbol string
	Side   bot.Side
	Type   bot.OrderType
	Status OrderStatus
	Price  float64
	Amount float64
	Cost   float64
	Fee    float64
}

// Gateway is the per-bot exchange client. Implementations are not required
// to be safe for concurrent use by more than one in-flight cycle; the
// scheduler's reentrancy guard guarantees single-cycle access per bot.
type Gateway interface {
	// FetchTicker returns the latest ticker for the symbol.
	FetchTicker(ctx context.Context, symbol string) (*Ticker, error)
	// FetchOHLCV returns up to limit candles for the symbol at the given
	// timeframe. A zero since means "most recent candles".
	FetchOHLCV(ctx context.Context, symbol, timeframe string, since time.Time, limit int) ([]Candle, error)
	// FetchBalance returns the account balances keyed by currency.
	FetchBalance(ctx context.Context) (map[string]Balance, error)
	// FetchOpenOrders returns the currently open orders for the symbol.
	FetchOpenOrders(ctx context.Context, symbol string) ([]Order, error)
	// FetchOrder returns the authoritative state of a previously placed order.
	FetchOrder(ctx context.Context, orderID, symbol string) (*Order, error)
	// CreateMarketOrder places a market order and returns the venue's report.
	CreateMarketOrder(ctx context.Context, symbol string, side bot.Side, amount float64) (*Order, error)
	// CreateLimitOrder places a limit order at the given price.
	CreateLimitOrder(ctx context.Context, symbol string, side bot.Side, amount, price float64) (*Order, error)
}

// Factory creates (and may cache) the gateway for a bot. Implementations
// resolve the bot's encrypted credentials at creation time.
type Factory interface {
	Gateway(ctx context.Context, b *bot.Bot) (Gateway, error)
	// Evict drops any cached gateway for the bot, forcing the next Gateway
	// call to build a fresh one.
	Evict(botID string)
}
