package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/your-org/trading-bot-engine/internal/engine"
	"github.com/your-org/trading-bot-engine/internal/performance"
	"github.com/your-org/trading-bot-engine/internal/store"
)

// BotHandler serves bot status snapshots and lifecycle operations.
type BotHandler struct {
	store  store.BotStore
	engine *engine.Engine
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(st store.BotStore, eng *engine.Engine) *BotHandler {
	return &BotHandler{store: st, engine: eng}
}

// RegisterRoutes registers the bot routes on a chi router.
func (h *BotHandler) RegisterRoutes(r chi.Router) {
	r.Get("/bots", h.ListBots)
	r.Get("/bots/{botID}", h.GetBot)
	r.Post("/bots/{botID}/start", h.lifecycle(h.engine.Start))
	r.Post("/bots/{botID}/stop", h.lifecycle(h.engine.Stop))
	r.Post("/bots/{botID}/pause", h.lifecycle(h.engine.Pause))
	r.Post("/bots/{botID}/resume", h.lifecycle(h.engine.Resume))
}

// botView is the API representation of a bot's state.
type botView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Strategy      string  `json:"strategy"`
	Status        string  `json:"status"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalPnl      float64 `json:"total_pnl"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// ListBots returns the status snapshot of every bot.
func (h *BotHandler) ListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.ListBots(r.Context())
	if err != nil {
		http.Error(w, "Failed to list bots", http.StatusInternalServerError)
		return
	}

	views := make([]botView, 0, len(bots))
	for _, b := range bots {
		views = append(views, botView{
			ID:            b.ID,
			Name:          b.Name,
			Symbol:        b.Symbol,
			Strategy:      b.Strategy,
			Status:        string(b.Status),
			TotalTrades:   b.Performance.TotalTrades,
			WinningTrades: b.Performance.WinningTrades,
			LosingTrades:  b.Performance.LosingTrades,
			WinRate:       performance.WinRate(b.Performance),
			TotalPnl:      b.Performance.TotalPnl,
			MaxDrawdown:   b.Performance.MaxDrawdown,
			ErrorMessage:  b.ErrorMessage,
		})
	}

	writeJSON(w, views)
}

// GetBot returns the status snapshot of one bot.
func (h *BotHandler) GetBot(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.GetBot(r.Context(), chi.URLParam(r, "botID"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Bot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load bot", http.StatusInternalServerError)
		return
	}

	writeJSON(w, botView{
		ID:            b.ID,
		Name:          b.Name,
		Symbol:        b.Symbol,
		Strategy:      b.Strategy,
		Status:        string(b.Status),
		TotalTrades:   b.Performance.TotalTrades,
		WinningTrades: b.Performance.WinningTrades,
		LosingTrades:  b.Performance.LosingTrades,
		WinRate:       performance.WinRate(b.Performance),
		TotalPnl:      b.Performance.TotalPnl,
		MaxDrawdown:   b.Performance.MaxDrawdown,
		ErrorMessage:  b.ErrorMessage,
	})
}

// lifecycle adapts an engine transition to an HTTP endpoint. Invalid
// transitions map to 409, unreachable exchanges to 502.
func (h *BotHandler) lifecycle(op func(ctx context.Context, botID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := op(r.Context(), chi.URLParam(r, "botID"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Bot not found", http.StatusNotFound)
		case errors.Is(err, engine.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, engine.ErrConnectivity):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
