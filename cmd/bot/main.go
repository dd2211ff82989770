// Package main is the entry point of the trading bot engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/trading-bot-engine/internal/alert"
	"github.com/your-org/trading-bot-engine/internal/config"
	"github.com/your-org/trading-bot-engine/internal/credential"
	"github.com/your-org/trading-bot-engine/internal/engine"
	"github.com/your-org/trading-bot-engine/internal/exchange/binance"
	"github.com/your-org/trading-bot-engine/internal/executor"
	"github.com/your-org/trading-bot-engine/internal/http/handler"
	"github.com/your-org/trading-bot-engine/internal/monitor"
	"github.com/your-org/trading-bot-engine/internal/performance"
	"github.com/your-org/trading-bot-engine/internal/store"
	"github.com/your-org/trading-bot-engine/internal/strategy"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.SetGlobalLogLevel(cfg.LogLevel)
	logger.Info("Trading bot engine starting...")
	logger.Infof("Loaded configuration from: %s", *configPath)

	// --- Persistence ---
	var st store.Store
	if cfg.Database.Host != "" {
		if err := store.Migrate(cfg.Database.URL()); err != nil {
			logger.Fatalf("Failed to migrate database schema: %v", err)
		}
		pgStore, err := store.NewPostgresStore(ctx, cfg.Database.URL())
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer pgStore.Close()
		st = pgStore
		logger.Info("PostgreSQL store initialized.")
	} else {
		st = store.NewMemoryStore()
		logger.Warn("No database configured, using in-memory store. State is lost on restart.")
	}

	// --- Credentials ---
	decryptor, err := credential.NewChaCha(cfg.CredentialKey)
	if err != nil {
		logger.Fatalf("Failed to initialize credential decryptor: %v", err)
	}

	// --- Exchange gateway ---
	if cfg.Exchange.BaseURL != "" {
		binance.SetBaseURL(cfg.Exchange.BaseURL)
	} else if cfg.Exchange.Testnet {
		binance.SetBaseURL("https://testnet.binance.vision")
	}
	if cfg.Exchange.WSURL != "" {
		binance.SetWSURL(cfg.Exchange.WSURL)
	}

	var stream *binance.TickerStream
	if cfg.Exchange.UseTickerStream {
		symbols, err := botSymbols(ctx, st)
		if err != nil {
			logger.Fatalf("Failed to list bot symbols for ticker stream: %v", err)
		}
		if len(symbols) > 0 {
			stream = binance.NewTickerStream(symbols)
			go stream.Run(ctx)
		}
	}
	factory := binance.NewFactory(decryptor, stream)

	// --- Notifications ---
	var notifier alert.Notifier
	if cfg.Alert.WebhookURL != "" {
		notifier = alert.NewWebhookNotifier(cfg.Alert.WebhookURL)
		logger.Info("Webhook notifier initialized.")
	} else {
		notifier = alert.NewNoOpNotifier()
	}
	defer notifier.Close()

	// --- Strategies ---
	registry := strategy.NewRegistry()
	registry.Register(strategy.NewCrossover())
	registry.Register(strategy.NewMeanReversion())
	registry.Register(strategy.NewGrid(cfg.Grid.Tolerance, cfg.Grid.SellCapRatio))
	registry.Register(strategy.NewDCA())
	logger.Infof("Registered strategies: %v", registry.Names())

	// --- Engine and trade monitor ---
	tracker := performance.NewTracker(st)
	eng := engine.New(cfg.Engine, st, registry, factory, executor.New(st), tracker, notifier)
	if err := eng.Restore(ctx); err != nil {
		logger.Fatalf("Failed to restore running bots: %v", err)
	}

	mon := monitor.New(st, factory, notifier, cfg.Monitor.PollInterval())
	go mon.Run(ctx)

	// --- HTTP server ---
	router := chi.NewRouter()
	router.Get("/health", handler.HealthCheckHandler)
	handler.NewBotHandler(st, eng).RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		logger.Infof("HTTP server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// --- Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Infof("Received signal %s, shutting down...", sig)

	cancel()
	eng.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	logger.Info("Trading bot engine stopped.")
}

// botSymbols collects the distinct symbols of all configured bots for the
// shared ticker stream subscription.
func botSymbols(ctx context.Context, st store.BotStore) ([]string, error) {
	bots, err := st.ListBots(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(bots))
	var symbols []string
	for _, b := range bots {
		if _, ok := seen[b.Symbol]; ok {
			continue
		}
		seen[b.Symbol] = struct{}{}
		symbols = append(symbols, b.Symbol)
	}
	return symbols, nil
}
