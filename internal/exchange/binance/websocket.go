package binance

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cast"

	"github.com/your-org/trading-bot-engine/pkg/logger"
)

var (
	// defaultWSURL can be overridden for testing or testnet use.
	defaultWSURL = "wss://stream.binance.com:9443"
)

// SetWSURL sets the WebSocket base URL for new streams.
func SetWSURL(url string) {
	defaultWSURL = url
}

// miniTickerEvent is the payload of the <symbol>@miniTicker stream.
type miniTickerEvent struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

// TickerStream maintains a live last-price cache for a set of symbols over
// the combined miniTicker WebSocket stream. It reconnects with exponential
// backoff until its context is cancelled.
type TickerStream struct {
	wsURL   string
	symbols []string

	mu   sync.RWMutex
	last map[string]float64
}

// NewTickerStream creates a stream for the given symbols (internal
// "BTC/USDT" form).
func NewTickerStream(symbols []string) *TickerStream {
	return &TickerStream{
		wsURL:   defaultWSURL,
		symbols: symbols,
		last:    make(map[string]float64),
	}
}

// Last returns the most recent streamed price for the symbol.
func (s *TickerStream) Last(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.last[marketSymbol(symbol)]
	return price, ok
}

// streamPath builds the combined-stream path for all subscribed symbols.
func (s *TickerStream) streamPath() string {
	streams := make([]string, len(s.symbols))
	for i, symbol := range s.symbols {
		streams[i] = strings.ToLower(marketSymbol(symbol)) + "@miniTicker"
	}
	return "/stream?streams=" + strings.Join(streams, "/")
}

// Run connects and consumes ticker events until the context is cancelled.
// Connection loss triggers a reconnect with exponential backoff capped at one
// minute.
func (s *TickerStream) Run(ctx context.Context) {
	if len(s.symbols) == 0 {
		logger.Warn("ticker stream started without symbols, nothing to do")
		return
	}

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Errorf("ticker stream disconnected: %v. Reconnecting in %s", err, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < time.Minute {
			backoff *= 2
		}
	}
}

func (s *TickerStream) consume(ctx context.Context) error {
	url := s.wsURL + s.streamPath()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Infof("ticker stream connected: %s", url)

	// unblock ReadMessage when the context is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		// combined streams wrap the event in {"stream": ..., "data": ...}
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		payload := message
		if err := json.Unmarshal(message, &envelope); err == nil && len(envelope.Data) > 0 {
			payload = envelope.Data
		}

		var event miniTickerEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.Warnf("ticker stream: unparseable message: %s", message)
			continue
		}
		if event.Symbol == "" {
			continue
		}

		price, err := cast.ToFloat64E(event.Close)
		if err != nil {
			logger.Warnf("ticker stream: invalid close price %q for %s", event.Close, event.Symbol)
			continue
		}

		s.mu.Lock()
		s.last[event.Symbol] = price
		s.mu.Unlock()
	}
}
