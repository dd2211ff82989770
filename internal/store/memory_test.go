package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

func TestMemoryStoreBotRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetBot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	b := &bot.Bot{
		ID:       "bot-1",
		Name:     "grid bot",
		Symbol:   "BTC/USDT",
		Strategy: "grid",
		Status:   bot.StatusStopped,
		Settings: map[string]any{"gridLevels": 10},
		Allocation: bot.Allocation{
			Amount:   500,
			Currency: "USDT",
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveBot(ctx, b))

	got, err := s.GetBot(ctx, "bot-1")
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)
	assert.Equal(t, bot.StatusStopped, got.Status)

	// mutating the returned value must not leak back into the store
	got.Status = bot.StatusRunning
	again, err := s.GetBot(ctx, "bot-1")
	require.NoError(t, err)
	assert.Equal(t, bot.StatusStopped, again.Status)

	// save is an upsert
	b.Status = bot.StatusRunning
	require.NoError(t, s.SaveBot(ctx, b))
	again, err = s.GetBot(ctx, "bot-1")
	require.NoError(t, err)
	assert.Equal(t, bot.StatusRunning, again.Status)
}

func TestMemoryStoreListBotsOrdered(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.SaveBot(ctx, &bot.Bot{
			ID:        id,
			CreatedAt: base.Add(time.Duration(len("cab")-i) * time.Hour),
		}))
	}

	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 3)
	assert.Equal(t, "b", bots[0].ID)
	assert.Equal(t, "a", bots[1].ID)
	assert.Equal(t, "c", bots[2].ID)
}

func TestMemoryStoreTradeFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seed := []*bot.Trade{
		{ID: "t1", BotID: "bot-1", Symbol: "BTC/USDT", Side: bot.SideBuy, Status: bot.TradeStatusFilled, CreatedAt: base},
		{ID: "t2", BotID: "bot-1", Symbol: "BTC/USDT", Side: bot.SideSell, Status: bot.TradeStatusPending, CreatedAt: base.Add(time.Minute)},
		{ID: "t3", BotID: "bot-2", Symbol: "ETH/USDT", Side: bot.SideBuy, Status: bot.TradeStatusPending, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "t4", BotID: "bot-1", Symbol: "BTC/USDT", Side: bot.SideBuy, Status: bot.TradeStatusFilled, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, tr := range seed {
		require.NoError(t, s.InsertTrade(ctx, tr))
	}

	pending, err := s.FindTrades(ctx, TradeFilter{Status: bot.TradeStatusPending}, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "t2", pending[0].ID)
	assert.Equal(t, "t3", pending[1].ID)

	buys, err := s.FindTrades(ctx, TradeFilter{BotID: "bot-1", Side: bot.SideBuy}, 0)
	require.NoError(t, err)
	require.Len(t, buys, 2)
	assert.Equal(t, "t1", buys[0].ID)
	assert.Equal(t, "t4", buys[1].ID)

	early, err := s.FindTrades(ctx, TradeFilter{CreatedBefore: base.Add(2 * time.Minute)}, 0)
	require.NoError(t, err)
	require.Len(t, early, 2)

	limited, err := s.FindTrades(ctx, TradeFilter{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "t1", limited[0].ID)
}

func TestMemoryStoreUpdateTrade(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.UpdateTrade(ctx, &bot.Trade{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	tr := &bot.Trade{ID: "t1", BotID: "bot-1", Status: bot.TradeStatusPending}
	require.NoError(t, s.InsertTrade(ctx, tr))

	tr.Status = bot.TradeStatusFilled
	tr.Pnl = 3.5
	require.NoError(t, s.UpdateTrade(ctx, tr))

	got, err := s.FindTrades(ctx, TradeFilter{BotID: "bot-1"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bot.TradeStatusFilled, got[0].Status)
	assert.Equal(t, 3.5, got[0].Pnl)
}
