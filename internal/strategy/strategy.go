// Package strategy contains the trading strategy modules and the registry
// the scheduler dispatches through. Each module is a pure function of the
// bot's configuration and a market snapshot; none of them place orders.
package strategy

import (
	"context"
	"errors"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

var (
	// ErrUnknownStrategy is returned when a bot references a strategy that
	// is not registered. The scheduler treats the cycle as a no-op.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvalidSettings is returned when a bot's settings do not satisfy
	// the strategy's parameter constraints.
	ErrInvalidSettings = errors.New("invalid strategy settings")
)

// Action is what a decision tells the executor to do.
type Action string

const (
	ActionHold Action = "hold"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Decision is the output of one strategy evaluation. It is ephemeral and
// carries no identity across cycles.
type Decision struct {
	Action     Action
	Type       bot.OrderType
	Amount     float64
	Price      float64
	StopLoss   float64 // 0 when the strategy attaches no stop
	TakeProfit float64 // 0 when the strategy attaches no target
	Reason     string
}

// Hold builds a hold decision with the given rationale.
func Hold(reason string) Decision {
	return Decision{Action: ActionHold, Reason: reason}
}

// Snapshot is the market data fetched once per evaluation cycle and passed
// unchanged to the selected strategy.
type Snapshot struct {
	LastPrice float64
	Closes    []float64
	Balances  map[string]exchange.Balance
}

// FreeBalance returns the free balance for a currency, zero when absent.
func (s Snapshot) FreeBalance(currency string) float64 {
	return s.Balances[currency].Free
}

// Strategy is one pluggable decision module. Evaluate must be side-effect
// free with respect to the exchange: the gateway argument exists only for
// order-book introspection (open orders), never for placement.
type Strategy interface {
	// Name returns the stable identifier the registry keys on.
	Name() string
	// Evaluate inspects the snapshot and returns a trading decision.
	Evaluate(ctx context.Context, b *bot.Bot, snap Snapshot, gw exchange.Gateway) (Decision, error)
}
