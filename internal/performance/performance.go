// Package performance derives aggregate trading metrics from the trade
// ledger. Metrics are always recomputed from scratch so the ledger stays the
// single source of truth.
package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/store"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

// Compute aggregates the metrics over the given trades. Trades must be in
// chronological order. Every trade counts toward the total; only filled
// trades carry realized PnL and so contribute to the win/loss counts and to
// max drawdown, the largest fractional decline of the cumulative PnL from
// its running peak.
func Compute(trades []*bot.Trade) bot.Performance {
	var p bot.Performance

	var running, peak, maxDrawdown float64
	for _, t := range trades {
		p.TotalTrades++
		if t.Status != bot.TradeStatusFilled {
			continue
		}
		p.TotalPnl += t.Pnl
		if t.Pnl > 0 {
			p.WinningTrades++
		} else if t.Pnl < 0 {
			p.LosingTrades++
		}

		running += t.Pnl
		if running > peak {
			peak = running
		}
		// divisor floored at 1 so an all-loss history cannot divide by zero
		divisor := peak
		if divisor < 1 {
			divisor = 1
		}
		if dd := (peak - running) / divisor; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	p.MaxDrawdown = maxDrawdown
	return p
}

// WinRate returns the share of closed trades with positive PnL, in percent.
func WinRate(p bot.Performance) float64 {
	closed := p.WinningTrades + p.LosingTrades
	if closed == 0 {
		return 0
	}
	return float64(p.WinningTrades) / float64(closed) * 100
}

// Tracker recomputes a bot's performance after each evaluation cycle and
// persists the result.
type Tracker struct {
	store store.Store
}

// NewTracker creates a Tracker over the given store.
func NewTracker(st store.Store) *Tracker {
	return &Tracker{store: st}
}

// Update recomputes the bot's metrics from its full trade history, stamps the
// execution time and saves the bot.
func (t *Tracker) Update(ctx context.Context, b *bot.Bot) error {
	trades, err := t.store.FindTrades(ctx, store.TradeFilter{BotID: b.ID}, 0)
	if err != nil {
		return fmt.Errorf("failed to load trade history for bot %s: %w", b.ID, err)
	}

	b.Performance = Compute(trades)
	b.LastExecution = time.Now().UTC()
	if err := t.store.SaveBot(ctx, b); err != nil {
		return fmt.Errorf("failed to save performance for bot %s: %w", b.ID, err)
	}

	logger.Debugf("bot %s: performance updated, trades=%d pnl=%.4f drawdown=%.4f",
		b.ID, b.Performance.TotalTrades, b.Performance.TotalPnl, b.Performance.MaxDrawdown)
	return nil
}
