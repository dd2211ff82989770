// Package monitor reconciles pending trades against the exchange and
// realizes PnL on confirmed sell fills.
package monitor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/trading-bot-engine/internal/alert"
	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
	"github.com/your-org/trading-bot-engine/internal/store"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

// Monitor periodically resolves pending trades to their terminal status.
type Monitor struct {
	store    store.Store
	factory  exchange.Factory
	notifier alert.Notifier
	interval time.Duration
}

// New creates a Monitor polling at the given interval.
func New(st store.Store, factory exchange.Factory, notifier alert.Notifier, interval time.Duration) *Monitor {
	return &Monitor{
		store:    st,
		factory:  factory,
		notifier: notifier,
		interval: interval,
	}
}

// Run sweeps pending trades on every tick until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logger.Infof("trade monitor started, polling every %s", m.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("trade monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep resolves every pending trade once. Failures on individual trades are
// contained: one bad trade does not stop the sweep.
func (m *Monitor) Sweep(ctx context.Context) {
	pending, err := m.store.FindTrades(ctx, store.TradeFilter{Status: bot.TradeStatusPending}, 0)
	if err != nil {
		logger.Errorf("trade monitor: failed to list pending trades: %v", err)
		return
	}

	for _, trade := range pending {
		if err := m.reconcile(ctx, trade); err != nil {
			logger.Warnf("trade monitor: trade %s not reconciled: %v", trade.ID, err)
		}
	}
}

func (m *Monitor) reconcile(ctx context.Context, trade *bot.Trade) error {
	b, err := m.store.GetBot(ctx, trade.BotID)
	if err != nil {
		return err
	}
	gw, err := m.factory.Gateway(ctx, b)
	if err != nil {
		return err
	}

	order, err := gw.FetchOrder(ctx, trade.ExchangeOrderID, trade.Symbol)
	if err != nil {
		// The order status cannot be resolved. Mark the trade failed so it
		// never pollutes the performance numbers; its PnL stays zero.
		logger.Warnf("trade monitor: order %s lookup failed, marking trade %s failed: %v",
			trade.ExchangeOrderID, trade.ID, err)
		trade.Status = bot.TradeStatusFailed
		trade.Pnl = 0
		return m.store.UpdateTrade(ctx, trade)
	}

	switch order.Status {
	case exchange.OrderStatusClosed:
		return m.markFilled(ctx, trade, order)
	case exchange.OrderStatusCanceled:
		trade.Status = bot.TradeStatusCancelled
		logger.Infof("trade monitor: trade %s cancelled on exchange", trade.ID)
		return m.store.UpdateTrade(ctx, trade)
	default:
		// still open, check again next sweep
		return nil
	}
}

func (m *Monitor) markFilled(ctx context.Context, trade *bot.Trade, order *exchange.Order) error {
	now := time.Now().UTC()
	trade.Status = bot.TradeStatusFilled
	trade.ExecutedAt = &now
	if order.Price > 0 {
		trade.Price = order.Price
	}
	if order.Amount > 0 {
		trade.Amount = order.Amount
	}
	// The exchange's cumulative quote quantity is authoritative; only fall
	// back to amount x price when the venue did not report it.
	if order.Cost > 0 {
		trade.Cost = order.Cost
	} else {
		trade.Cost = trade.Amount * trade.Price
	}
	if order.Fee > 0 {
		trade.Fee = order.Fee
	}

	if trade.Side == bot.SideSell {
		pnl, err := m.realizedPnl(ctx, trade)
		if err != nil {
			return err
		}
		trade.Pnl = pnl
	}

	if err := m.store.UpdateTrade(ctx, trade); err != nil {
		return err
	}

	logger.Infof("trade monitor: trade %s filled, amount %.8f at %.4f, pnl %.4f",
		trade.ID, trade.Amount, trade.Price, trade.Pnl)
	if err := m.notifier.Send(alert.TradeFilledMessage(trade)); err != nil {
		logger.Warnf("trade monitor: fill notification failed: %v", err)
	}
	return nil
}

// realizedPnl computes the profit of a sell fill against the quantity-weighted
// average price of the bot's earlier filled buys on the same symbol. With no
// prior buys the PnL is zero.
func (m *Monitor) realizedPnl(ctx context.Context, sell *bot.Trade) (float64, error) {
	buys, err := m.store.FindTrades(ctx, store.TradeFilter{
		BotID:         sell.BotID,
		Symbol:        sell.Symbol,
		Side:          bot.SideBuy,
		Status:        bot.TradeStatusFilled,
		CreatedBefore: sell.CreatedAt,
	}, 0)
	if err != nil {
		return 0, err
	}
	if len(buys) == 0 {
		return 0, nil
	}

	var totalCost, totalAmount decimal.Decimal
	for _, buy := range buys {
		amount := decimal.NewFromFloat(buy.Amount)
		totalCost = totalCost.Add(amount.Mul(decimal.NewFromFloat(buy.Price)))
		totalAmount = totalAmount.Add(amount)
	}
	if totalAmount.IsZero() {
		return 0, nil
	}

	avgBuyPrice := totalCost.Div(totalAmount)
	pnl := decimal.NewFromFloat(sell.Price).Sub(avgBuyPrice).Mul(decimal.NewFromFloat(sell.Amount))
	return pnl.InexactFloat64(), nil
}
