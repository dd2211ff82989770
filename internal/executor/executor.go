// Package executor turns strategy decisions into exchange orders and records
// each placement in the trade ledger.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
	"github.com/your-org/trading-bot-engine/internal/store"
	"github.com/your-org/trading-bot-engine/internal/strategy"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

// ErrNoAction is returned when a hold decision reaches the executor. The
// scheduler filters holds out; seeing one here is a programming error.
var ErrNoAction = errors.New("executor: decision carries no action")

// Executor places orders and persists the resulting trades.
type Executor struct {
	trades store.TradeStore
}

// New creates an Executor writing to the given trade store.
func New(trades store.TradeStore) *Executor {
	return &Executor{trades: trades}
}

// Execute places the order described by the decision through the bot's
// gateway and records it. The returned trade is pending until the monitor
// confirms the fill, except for orders the exchange reports closed
// immediately.
func (e *Executor) Execute(ctx context.Context, b *bot.Bot, dec strategy.Decision, gw exchange.Gateway) (*bot.Trade, error) {
	if dec.Action == strategy.ActionHold {
		return nil, ErrNoAction
	}
	if dec.Amount <= 0 {
		return nil, fmt.Errorf("executor: invalid order amount %f", dec.Amount)
	}

	side := bot.SideBuy
	if dec.Action == strategy.ActionSell {
		side = bot.SideSell
	}

	var (
		order *exchange.Order
		err   error
	)
	switch dec.Type {
	case bot.OrderTypeLimit:
		order, err = gw.CreateLimitOrder(ctx, b.Symbol, side, dec.Amount, dec.Price)
	default:
		order, err = gw.CreateMarketOrder(ctx, b.Symbol, side, dec.Amount)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to place %s %s order: %w", side, dec.Type, err)
	}

	now := time.Now().UTC()
	price := order.Price
	if price == 0 {
		price = dec.Price
	}

	trade := &bot.Trade{
		ID:              uuid.NewString(),
		BotID:           b.ID,
		Symbol:          b.Symbol,
		Side:            side,
		Type:            dec.Type,
		Amount:          order.Amount,
		Price:           price,
		Cost:            order.Amount * price,
		Fee:             order.Fee,
		Status:          bot.TradeStatusPending,
		ExchangeOrderID: order.ID,
		Strategy:        b.Strategy,
		Reason:          dec.Reason,
		CreatedAt:       now,
	}
	if order.Status == exchange.OrderStatusClosed {
		trade.Status = bot.TradeStatusFilled
		trade.ExecutedAt = &now
	}

	if err := e.trades.InsertTrade(ctx, trade); err != nil {
		// The order is live on the exchange; losing the record is worse than
		// the placement failing, so surface loudly.
		logger.Errorf("order %s placed but trade record not persisted: %v", order.ID, err)
		return nil, fmt.Errorf("failed to record trade for order %s: %w", order.ID, err)
	}

	logger.Infof("bot %s: placed %s %s order %s, amount %.8f at %.4f (%s)",
		b.ID, side, dec.Type, order.ID, order.Amount, price, dec.Reason)
	return trade, nil
}
