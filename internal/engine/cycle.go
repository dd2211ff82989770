package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
	"github.com/your-org/trading-bot-engine/internal/strategy"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

// cycle runs one evaluation for the bot: market snapshot, strategy dispatch,
// optional execution, performance update. A non-nil return moves the bot to
// error; configuration problems are logged and absorbed instead.
func (e *Engine) cycle(ctx context.Context, botID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	b, err := e.store.GetBot(ctx, botID)
	if err != nil {
		return fmt.Errorf("failed to load bot: %w", err)
	}
	if b.Status != bot.StatusRunning {
		// raced with a pause or stop; the task will be torn down shortly
		return nil
	}

	gw, err := e.factory.Gateway(ctx, b)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	snap, err := e.snapshot(ctx, b, gw)
	if err != nil {
		return err
	}

	strat, err := e.registry.Get(b.Strategy)
	if err != nil {
		// configuration fault: skip this cycle, leave the bot running
		logger.Errorf("bot %s: %v, cycle skipped", b.ID, err)
		return nil
	}

	dec, err := strat.Evaluate(ctx, b, snap, gw)
	if err != nil {
		if errors.Is(err, strategy.ErrInvalidSettings) {
			logger.Errorf("bot %s: %v, cycle skipped", b.ID, err)
			return nil
		}
		return fmt.Errorf("strategy %s evaluation failed: %w", b.Strategy, err)
	}

	if dec.Action == strategy.ActionHold {
		logger.Debugf("bot %s: hold (%s)", b.ID, dec.Reason)
	} else {
		if _, err := e.executor.Execute(ctx, b, dec, gw); err != nil {
			return fmt.Errorf("trade execution failed: %w", err)
		}
	}

	// metrics update runs on every cycle, hold or not
	if err := e.tracker.Update(ctx, b); err != nil {
		return fmt.Errorf("performance update failed: %w", err)
	}
	return nil
}

// snapshot collects the market data every strategy evaluation receives. Each
// exchange call is individually bounded by the configured timeout.
func (e *Engine) snapshot(ctx context.Context, b *bot.Bot, gw exchange.Gateway) (strategy.Snapshot, error) {
	timeout := e.cfg.CallTimeout()

	ticker, err := withTimeout(ctx, timeout, func(c context.Context) (*exchange.Ticker, error) {
		return gw.FetchTicker(c, b.Symbol)
	})
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to fetch ticker: %w", err)
	}

	candles, err := withTimeout(ctx, timeout, func(c context.Context) ([]exchange.Candle, error) {
		return gw.FetchOHLCV(c, b.Symbol, e.cfg.CandleTimeframe, time.Time{}, e.cfg.CandleLimit)
	})
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to fetch candles: %w", err)
	}

	balances, err := withTimeout(ctx, timeout, func(c context.Context) (map[string]exchange.Balance, error) {
		return gw.FetchBalance(c)
	})
	if err != nil {
		return strategy.Snapshot{}, fmt.Errorf("failed to fetch balance: %w", err)
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	return strategy.Snapshot{
		LastPrice: ticker.Last,
		Closes:    closes,
		Balances:  balances,
	}, nil
}

// withTimeout wraps one exchange call in a bounded deadline so a stalled
// venue cannot wedge the evaluation task.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}
