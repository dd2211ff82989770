// Package engine schedules bot evaluation cycles and owns the bot lifecycle
// state machine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/your-org/trading-bot-engine/internal/alert"
	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/config"
	"github.com/your-org/trading-bot-engine/internal/exchange"
	"github.com/your-org/trading-bot-engine/internal/executor"
	"github.com/your-org/trading-bot-engine/internal/performance"
	"github.com/your-org/trading-bot-engine/internal/store"
	"github.com/your-org/trading-bot-engine/internal/strategy"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

var (
	// ErrInvalidTransition is returned when a lifecycle operation is not
	// allowed from the bot's current status.
	ErrInvalidTransition = errors.New("engine: invalid lifecycle transition")
	// ErrConnectivity is returned when the exchange probe before Start or
	// Resume fails. The bot's status is left unchanged.
	ErrConnectivity = errors.New("engine: exchange connectivity check failed")
)

// evaluationIntervals maps the per-bot interval setting to a duration. Values
// outside this set fall back to the configured default period.
var evaluationIntervals = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// task is the scheduling state of one running bot.
type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine runs one periodic evaluation task per started bot. All lifecycle
// transitions go through it; nothing else mutates bot status.
type Engine struct {
	cfg      config.EngineConf
	store    store.Store
	registry *strategy.Registry
	factory  exchange.Factory
	executor *executor.Executor
	tracker  *performance.Tracker
	notifier alert.Notifier

	mu    sync.Mutex
	tasks map[string]*task
}

// New creates an Engine. The notifier may be a NoOpNotifier.
func New(cfg config.EngineConf, st store.Store, registry *strategy.Registry, factory exchange.Factory, exec *executor.Executor, tracker *performance.Tracker, notifier alert.Notifier) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    st,
		registry: registry,
		factory:  factory,
		executor: exec,
		tracker:  tracker,
		notifier: notifier,
		tasks:    make(map[string]*task),
	}
}

// Start transitions a stopped or errored bot to running and arms its
// evaluation task. The exchange must be reachable with the bot's credentials.
func (e *Engine) Start(ctx context.Context, botID string) error {
	b, err := e.store.GetBot(ctx, botID)
	if err != nil {
		return err
	}
	if b.Status != bot.StatusStopped && b.Status != bot.StatusError {
		return fmt.Errorf("%w: cannot start bot in status %s", ErrInvalidTransition, b.Status)
	}

	// Surface configuration problems before the bot ever runs.
	if _, err := e.registry.Get(b.Strategy); err != nil {
		return err
	}
	if err := e.probe(ctx, b); err != nil {
		return err
	}

	previous := b.Status
	now := time.Now().UTC()
	b.Status = bot.StatusRunning
	b.StartedAt = &now
	b.StoppedAt = nil
	b.ErrorMessage = ""
	if err := e.store.SaveBot(ctx, b); err != nil {
		return err
	}

	e.arm(b)
	logger.Infof("bot %s (%s) started with strategy %s", b.ID, b.Symbol, b.Strategy)
	e.notify(b, previous)
	return nil
}

// Stop cancels the bot's task and transitions it to stopped. Any non-stopped
// bot can be stopped, including one in error.
func (e *Engine) Stop(ctx context.Context, botID string) error {
	b, err := e.store.GetBot(ctx, botID)
	if err != nil {
		return err
	}
	if b.Status == bot.StatusStopped {
		return fmt.Errorf("%w: bot already stopped", ErrInvalidTransition)
	}

	e.disarm(botID)
	e.factory.Evict(botID)

	previous := b.Status
	now := time.Now().UTC()
	b.Status = bot.StatusStopped
	b.StoppedAt = &now
	if err := e.store.SaveBot(ctx, b); err != nil {
		return err
	}

	logger.Infof("bot %s stopped", b.ID)
	e.notify(b, previous)
	return nil
}

// Pause cancels the bot's task but keeps its runtime state so it can be
// resumed without a fresh start.
func (e *Engine) Pause(ctx context.Context, botID string) error {
	b, err := e.store.GetBot(ctx, botID)
	if err != nil {
		return err
	}
	if b.Status != bot.StatusRunning {
		return fmt.Errorf("%w: cannot pause bot in status %s", ErrInvalidTransition, b.Status)
	}

	e.disarm(botID)

	previous := b.Status
	b.Status = bot.StatusPaused
	if err := e.store.SaveBot(ctx, b); err != nil {
		return err
	}

	logger.Infof("bot %s paused", b.ID)
	e.notify(b, previous)
	return nil
}

// Resume re-arms a paused bot after a fresh connectivity probe.
func (e *Engine) Resume(ctx context.Context, botID string) error {
	b, err := e.store.GetBot(ctx, botID)
	if err != nil {
		return err
	}
	if b.Status != bot.StatusPaused {
		return fmt.Errorf("%w: cannot resume bot in status %s", ErrInvalidTransition, b.Status)
	}
	if err := e.probe(ctx, b); err != nil {
		return err
	}

	previous := b.Status
	b.Status = bot.StatusRunning
	if err := e.store.SaveBot(ctx, b); err != nil {
		return err
	}

	e.arm(b)
	logger.Infof("bot %s resumed", b.ID)
	e.notify(b, previous)
	return nil
}

// Restore re-arms the tasks of bots persisted as running, typically after a
// process restart. Bots whose exchange is unreachable move to error instead.
func (e *Engine) Restore(ctx context.Context) error {
	bots, err := e.store.ListBots(ctx)
	if err != nil {
		return err
	}
	for _, b := range bots {
		if b.Status != bot.StatusRunning {
			continue
		}
		if err := e.probe(ctx, b); err != nil {
			logger.Warnf("bot %s not restored: %v", b.ID, err)
			e.fail(ctx, b.ID, err)
			continue
		}
		e.arm(b)
		logger.Infof("bot %s restored", b.ID)
	}
	return nil
}

// Shutdown cancels all tasks and waits for in-flight cycles to finish.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	tasks := make([]*task, 0, len(e.tasks))
	for id, t := range e.tasks {
		t.cancel()
		tasks = append(tasks, t)
		delete(e.tasks, id)
	}
	e.mu.Unlock()

	for _, t := range tasks {
		<-t.done
	}
	logger.Info("engine shut down")
}

// Running reports whether the bot currently has an armed task.
func (e *Engine) Running(botID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tasks[botID]
	return ok
}

// probe verifies the exchange is reachable with the bot's credentials.
func (e *Engine) probe(ctx context.Context, b *bot.Bot) error {
	gw, err := e.factory.Gateway(ctx, b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout())
	defer cancel()
	if _, err := gw.FetchBalance(callCtx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return nil
}

// arm replaces any existing task for the bot with a fresh one. Cancelling
// before re-arming makes repeated Start calls safe.
func (e *Engine) arm(b *bot.Bot) {
	e.mu.Lock()
	if old, ok := e.tasks[b.ID]; ok {
		old.cancel()
		delete(e.tasks, b.ID)
		e.mu.Unlock()
		<-old.done
		e.mu.Lock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	e.tasks[b.ID] = t
	e.mu.Unlock()

	go e.run(ctx, b.ID, t, e.period(b))
}

// disarm cancels the bot's task and waits for its loop to exit.
func (e *Engine) disarm(botID string) {
	e.mu.Lock()
	t, ok := e.tasks[botID]
	if ok {
		t.cancel()
		delete(e.tasks, botID)
	}
	e.mu.Unlock()
	if ok {
		<-t.done
	}
}

// drop removes the task entry without waiting; used from within the task's
// own goroutine where waiting on done would deadlock.
func (e *Engine) drop(botID string) {
	e.mu.Lock()
	if t, ok := e.tasks[botID]; ok {
		t.cancel()
		delete(e.tasks, botID)
	}
	e.mu.Unlock()
}

// period resolves the bot's evaluation interval from its settings.
func (e *Engine) period(b *bot.Bot) time.Duration {
	raw, ok := b.Settings["interval"]
	if !ok {
		return e.cfg.DefaultPeriod()
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return e.cfg.DefaultPeriod()
	}
	if d, ok := evaluationIntervals[s]; ok {
		return d
	}
	return e.cfg.DefaultPeriod()
}

// run is the per-bot scheduling loop.
func (e *Engine) run(ctx context.Context, botID string, t *task, period time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	logger.Debugf("bot %s: evaluation task armed, period %s", botID, period)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.cycle(ctx, botID); err != nil {
				e.fail(context.WithoutCancel(ctx), botID, err)
				return
			}
			// A tick that fired while the cycle was running is stale.
			// Drain it so an overrunning cycle is followed by the next
			// scheduled tick, never by an immediate back-to-back one.
			select {
			case <-ticker.C:
				logger.Warnf("bot %s: evaluation overran its period, tick skipped", botID)
			default:
			}
		}
	}
}

// fail moves the bot to error, records the cause and tears the task down. The
// bot does not auto-retry; a manual Start is required.
func (e *Engine) fail(ctx context.Context, botID string, cause error) {
	e.drop(botID)
	e.factory.Evict(botID)

	b, err := e.store.GetBot(ctx, botID)
	if err != nil {
		logger.Errorf("bot %s: failed to load while recording error: %v", botID, err)
		return
	}
	previous := b.Status
	b.Status = bot.StatusError
	b.ErrorMessage = cause.Error()
	if err := e.store.SaveBot(ctx, b); err != nil {
		logger.Errorf("bot %s: failed to persist error state: %v", botID, err)
		return
	}

	logger.Errorf("bot %s entered error state: %v", botID, cause)
	e.notify(b, previous)
}

func (e *Engine) notify(b *bot.Bot, previous bot.Status) {
	if err := e.notifier.Send(alert.BotStatusMessage(b, previous)); err != nil {
		logger.Warnf("bot %s: status notification failed: %v", b.ID, err)
	}
}
