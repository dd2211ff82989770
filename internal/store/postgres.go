package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// PostgresStore is the production Store backed by a pgx connection pool.
// Money columns are NUMERIC and travel as decimals to avoid binary float
// drift in the ledger.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

const botColumns = `
	id, name, symbol, strategy, status, settings,
	allocation_amount, allocation_currency,
	total_trades, winning_trades, losing_trades, total_pnl, max_drawdown,
	api_key_ciphertext, api_secret_ciphertext,
	last_execution, started_at, stopped_at, error_message, created_at`

// GetBot implements BotStore.
func (s *PostgresStore) GetBot(ctx context.Context, id string) (*bot.Bot, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+botColumns+` FROM bots WHERE id = $1;`, id)
	b, err := scanBot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// SaveBot implements BotStore as an upsert keyed on the bot ID.
func (s *PostgresStore) SaveBot(ctx context.Context, b *bot.Bot) error {
	settings, err := json.Marshal(b.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode bot settings: %w", err)
	}

	query := `
        INSERT INTO bots (` + botColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            symbol = EXCLUDED.symbol,
            strategy = EXCLUDED.strategy,
            status = EXCLUDED.status,
            settings = EXCLUDED.settings,
            allocation_amount = EXCLUDED.allocation_amount,
            allocation_currency = EXCLUDED.allocation_currency,
            total_trades = EXCLUDED.total_trades,
            winning_trades = EXCLUDED.winning_trades,
            losing_trades = EXCLUDED.losing_trades,
            total_pnl = EXCLUDED.total_pnl,
            max_drawdown = EXCLUDED.max_drawdown,
            api_key_ciphertext = EXCLUDED.api_key_ciphertext,
            api_secret_ciphertext = EXCLUDED.api_secret_ciphertext,
            last_execution = EXCLUDED.last_execution,
            started_at = EXCLUDED.started_at,
            stopped_at = EXCLUDED.stopped_at,
            error_message = EXCLUDED.error_message;
    `
	_, err = s.pool.Exec(ctx, query,
		b.ID, b.Name, b.Symbol, b.Strategy, string(b.Status), settings,
		decimal.NewFromFloat(b.Allocation.Amount), b.Allocation.Currency,
		b.Performance.TotalTrades, b.Performance.WinningTrades, b.Performance.LosingTrades,
		decimal.NewFromFloat(b.Performance.TotalPnl), decimal.NewFromFloat(b.Performance.MaxDrawdown),
		b.APIKeyCiphertext, b.APISecretCiphertext,
		b.LastExecution, b.StartedAt, b.StoppedAt, b.ErrorMessage, b.CreatedAt,
	)
	return err
}

// ListBots implements BotStore.
func (s *PostgresStore) ListBots(ctx context.Context) ([]*bot.Bot, error) {
	rows, err := s.pool.Query(ctx, `SELECT`+botColumns+` FROM bots ORDER BY created_at ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bots []*bot.Bot
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

func scanBot(row pgx.Row) (*bot.Bot, error) {
	var (
		b          bot.Bot
		status     string
		settings   []byte
		allocation decimal.Decimal
		totalPnl   decimal.Decimal
		drawdown   decimal.Decimal
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.Symbol, &b.Strategy, &status, &settings,
		&allocation, &b.Allocation.Currency,
		&b.Performance.TotalTrades, &b.Performance.WinningTrades, &b.Performance.LosingTrades,
		&totalPnl, &drawdown,
		&b.APIKeyCiphertext, &b.APISecretCiphertext,
		&b.LastExecution, &b.StartedAt, &b.StoppedAt, &b.ErrorMessage, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = bot.Status(status)
	b.Allocation.Amount = allocation.InexactFloat64()
	b.Performance.TotalPnl = totalPnl.InexactFloat64()
	b.Performance.MaxDrawdown = drawdown.InexactFloat64()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &b.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode bot settings: %w", err)
		}
	}
	return &b, nil
}

const tradeColumns = `
	id, bot_id, symbol, side, type, amount, price, cost, fee,
	status, exchange_order_id, pnl, strategy, reason, created_at, executed_at`

// InsertTrade implements TradeStore.
func (s *PostgresStore) InsertTrade(ctx context.Context, t *bot.Trade) error {
	query := `
        INSERT INTO trades (` + tradeColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
    `
	_, err := s.pool.Exec(ctx, query,
		t.ID, t.BotID, t.Symbol, string(t.Side), string(t.Type),
		decimal.NewFromFloat(t.Amount), decimal.NewFromFloat(t.Price),
		decimal.NewFromFloat(t.Cost), decimal.NewFromFloat(t.Fee),
		string(t.Status), t.ExchangeOrderID, decimal.NewFromFloat(t.Pnl),
		t.Strategy, t.Reason, t.CreatedAt, t.ExecutedAt,
	)
	return err
}

// UpdateTrade implements TradeStore, rewriting only the columns the trade
// monitor mutates.
func (s *PostgresStore) UpdateTrade(ctx context.Context, t *bot.Trade) error {
	query := `
        UPDATE trades
        SET status = $2, price = $3, cost = $4, fee = $5, pnl = $6, executed_at = $7
        WHERE id = $1;
    `
	tag, err := s.pool.Exec(ctx, query,
		t.ID, string(t.Status),
		decimal.NewFromFloat(t.Price), decimal.NewFromFloat(t.Cost),
		decimal.NewFromFloat(t.Fee), decimal.NewFromFloat(t.Pnl),
		t.ExecutedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindTrades implements TradeStore.
func (s *PostgresStore) FindTrades(ctx context.Context, f TradeFilter, limit int) ([]*bot.Trade, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.BotID != "" {
		add("bot_id", f.BotID)
	}
	if f.Side != "" {
		add("side", string(f.Side))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.Symbol != "" {
		add("symbol", f.Symbol)
	}
	if !f.CreatedBefore.IsZero() {
		args = append(args, f.CreatedBefore)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := `SELECT` + tradeColumns + ` FROM trades`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	query += ";"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*bot.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func scanTrade(row pgx.Row) (*bot.Trade, error) {
	var (
		t          bot.Trade
		side       string
		orderType  string
		status     string
		amount     decimal.Decimal
		price      decimal.Decimal
		cost       decimal.Decimal
		fee        decimal.Decimal
		pnl        decimal.Decimal
		executedAt *time.Time
	)
	err := row.Scan(
		&t.ID, &t.BotID, &t.Symbol, &side, &orderType,
		&amount, &price, &cost, &fee,
		&status, &t.ExchangeOrderID, &pnl, &t.Strategy, &t.Reason,
		&t.CreatedAt, &executedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Side = bot.Side(side)
	t.Type = bot.OrderType(orderType)
	t.Status = bot.TradeStatus(status)
	t.Amount = amount.InexactFloat64()
	t.Price = price.InexactFloat64()
	t.Cost = cost.InexactFloat64()
	t.Fee = fee.InexactFloat64()
	t.Pnl = pnl.InexactFloat64()
	t.ExecutedAt = executedAt
	return &t, nil
}
