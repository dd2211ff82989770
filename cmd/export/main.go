// Command export dumps the trade history of a bot to a CSV file for offline
// analysis.
package main

import (
	"context"
	"flag"
	"strconv"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/config"
	"github.com/your-org/trading-bot-engine/internal/csvwriter"
	"github.com/your-org/trading-bot-engine/internal/store"
	"github.com/your-org/trading-bot-engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to the configuration file")
	botID := flag.String("bot", "", "Bot ID to export trades for")
	status := flag.String("status", "", "Optional trade status filter (pending, filled, cancelled, failed)")
	output := flag.String("output", "trades.csv", "Output CSV file path")
	flag.Parse()

	if *botID == "" {
		logger.Fatal("The --bot flag is required.")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetGlobalLogLevel(cfg.LogLevel)

	if cfg.Database.Host == "" {
		logger.Fatal("Export requires a PostgreSQL database; none is configured.")
	}

	ctx := context.Background()
	st, err := store.NewPostgresStore(ctx, cfg.Database.URL())
	if err != nil {
		logger.Fatalf("Unable to connect to database: %v", err)
	}
	defer st.Close()

	trades, err := st.FindTrades(ctx, store.TradeFilter{
		BotID:  *botID,
		Status: bot.TradeStatus(*status),
	}, 0)
	if err != nil {
		logger.Fatalf("Failed to query trades: %v", err)
	}

	w, err := csvwriter.NewWriter(*output)
	if err != nil {
		logger.Fatalf("Failed to create output file: %v", err)
	}
	defer w.Close()

	header := []string{"id", "symbol", "side", "type", "amount", "price", "cost", "fee", "status", "pnl", "strategy", "reason", "created_at", "executed_at"}
	if err := w.Write(header); err != nil {
		logger.Fatalf("Failed to write CSV header: %v", err)
	}

	for _, tr := range trades {
		executedAt := ""
		if tr.ExecutedAt != nil {
			executedAt = tr.ExecutedAt.Format("2006-01-02 15:04:05.999999-07")
		}
		record := []string{
			tr.ID,
			tr.Symbol,
			string(tr.Side),
			string(tr.Type),
			strconv.FormatFloat(tr.Amount, 'f', -1, 64),
			strconv.FormatFloat(tr.Price, 'f', -1, 64),
			strconv.FormatFloat(tr.Cost, 'f', -1, 64),
			strconv.FormatFloat(tr.Fee, 'f', -1, 64),
			string(tr.Status),
			strconv.FormatFloat(tr.Pnl, 'f', -1, 64),
			tr.Strategy,
			tr.Reason,
			tr.CreatedAt.Format("2006-01-02 15:04:05.999999-07"),
			executedAt,
		}
		if err := w.Write(record); err != nil {
			logger.Fatalf("Failed to write CSV record: %v", err)
		}
	}

	logger.Infof("Exported %d trades to %s.", len(trades), *output)
}
