package binance

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

// apiError is the standard Binance error envelope.
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Msg)
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type accountBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type accountResponse struct {
	Balances []accountBalance `json:"balances"`
}

type orderFill struct {
	Price      string `json:"price"`
	Qty        string `json:"qty"`
	Commission string `json:"commission"`
}

type orderResponse struct {
	Symbol              string      `json:"symbol"`
	OrderID             int64       `json:"orderId"`
	Price               string      `json:"price"`
	OrigQty             string      `json:"origQty"`
	ExecutedQty         string      `json:"executedQty"`
	CummulativeQuoteQty string      `json:"cummulativeQuoteQty"`
	Status              string      `json:"status"`
	Type                string      `json:"type"`
	Side                string      `json:"side"`
	Fills               []orderFill `json:"fills"`
}

// marketSymbol converts the internal "BTC/USDT" form to Binance's "BTCUSDT".
func marketSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

func orderSide(side bot.Side) string {
	return strings.ToUpper(string(side))
}

// orderStatus normalizes Binance order states to the gateway's three states.
func orderStatus(status string) exchange.OrderStatus {
	switch status {
	case "FILLED":
		return exchange.OrderStatusClosed
	case "CANCELED", "REJECTED", "EXPIRED", "EXPIRED_IN_MATCH":
		return exchange.OrderStatusCanceled
	default: // NEW, PARTIALLY_FILLED, PENDING_CANCEL
		return exchange.OrderStatusOpen
	}
}

// toOrder converts a Binance order payload to the gateway's order form. The
// fill price is derived from the executed notional when present, falling back
// to the quoted order price.
func (r *orderResponse) toOrder(symbol string) (*exchange.Order, error) {
	executed, err := cast.ToFloat64E(r.ExecutedQty)
	if err != nil {
		return nil, fmt.Errorf("invalid executedQty %q: %w", r.ExecutedQty, err)
	}
	quoted, err := cast.ToFloat64E(r.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", r.Price, err)
	}
	origQty, err := cast.ToFloat64E(r.OrigQty)
	if err != nil {
		return nil, fmt.Errorf("invalid origQty %q: %w", r.OrigQty, err)
	}

	amount := origQty
	if executed > 0 {
		amount = executed
	}

	price := quoted
	var cost float64
	if r.CummulativeQuoteQty != "" {
		cost, err = cast.ToFloat64E(r.CummulativeQuoteQty)
		if err != nil {
			return nil, fmt.Errorf("invalid cummulativeQuoteQty %q: %w", r.CummulativeQuoteQty, err)
		}
		if executed > 0 && cost > 0 {
			price = cost / executed
		}
	}

	var fee float64
	for _, fill := range r.Fills {
		commission, err := cast.ToFloat64E(fill.Commission)
		if err != nil {
			return nil, fmt.Errorf("invalid fill commission %q: %w", fill.Commission, err)
		}
		fee += commission
	}

	side := bot.SideBuy
	if strings.EqualFold(r.Side, "SELL") {
		side = bot.SideSell
	}
	orderType := bot.OrderTypeMarket
	if strings.EqualFold(r.Type, "LIMIT") {
		orderType = bot.OrderTypeLimit
	}

	return &exchange.Order{
		ID:     cast.ToString(r.OrderID),
		Symbol: symbol,
		Side:   side,
		Type:   orderType,
		Status: orderStatus(r.Status),
		Price:  price,
		Amount: amount,
		Cost:   cost,
		Fee:    fee,
	}, nil
}

// parseKline converts one raw kline entry. Binance encodes klines as mixed
// arrays: [openTime, open, high, low, close, volume, closeTime, ...].
func parseKline(raw []any) (exchange.Candle, error) {
	if len(raw) < 6 {
		return exchange.Candle{}, fmt.Errorf("kline entry has %d fields, want at least 6", len(raw))
	}

	openTime, err := cast.ToInt64E(raw[0])
	if err != nil {
		return exchange.Candle{}, fmt.Errorf("invalid kline open time: %w", err)
	}

	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		v, err := cast.ToFloat64E(raw[i])
		if err != nil {
			return exchange.Candle{}, fmt.Errorf("invalid kline field %d: %w", i, err)
		}
		values[i-1] = v
	}

	return exchange.Candle{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}
