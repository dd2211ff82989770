package store

import (
	"context"
	"sort"
	"sync"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// MemoryStore is an in-memory Store implementation. It is safe for concurrent
// use and copies values on the way in and out so callers cannot alias its
// internal state.
type MemoryStore struct {
	mu     sync.RWMutex
	bots   map[string]bot.Bot
	trades map[string]bot.Trade
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bots:   make(map[string]bot.Bot),
		trades: make(map[string]bot.Trade),
	}
}

// GetBot implements BotStore.
func (s *MemoryStore) GetBot(_ context.Context, id string) (*bot.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := b
	return &out, nil
}

// SaveBot implements BotStore.
func (s *MemoryStore) SaveBot(_ context.Context, b *bot.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bots[b.ID] = *b
	return nil
}

// ListBots implements BotStore.
func (s *MemoryStore) ListBots(_ context.Context) ([]*bot.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*bot.Bot, 0, len(s.bots))
	for _, b := range s.bots {
		c := b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// InsertTrade implements TradeStore.
func (s *MemoryStore) InsertTrade(_ context.Context, t *bot.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[t.ID] = *t
	return nil
}

// UpdateTrade implements TradeStore.
func (s *MemoryStore) UpdateTrade(_ context.Context, t *bot.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trades[t.ID]; !ok {
		return ErrNotFound
	}
	s.trades[t.ID] = *t
	return nil
}

// FindTrades implements TradeStore.
func (s *MemoryStore) FindTrades(_ context.Context, f TradeFilter, limit int) ([]*bot.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*bot.Trade
	for _, t := range s.trades {
		if !matches(t, f) {
			continue
		}
		c := t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matches(t bot.Trade, f TradeFilter) bool {
	if f.BotID != "" && t.BotID != f.BotID {
		return false
	}
	if f.Side != "" && t.Side != f.Side {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	if !f.CreatedBefore.IsZero() && !t.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}
