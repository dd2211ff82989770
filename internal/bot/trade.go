package bot

import "time"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType is the execution type of a trade.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// TradeStatus is the reconciliation state of a trade.
type TradeStatus string

const (
	// TradeStatusPending means the order was placed but not yet confirmed
	// filled by the exchange.
	TradeStatusPending TradeStatus = "pending"
	// TradeStatusFilled means the exchange reported the order closed. Pnl is
	// authoritative only in this state.
	TradeStatusFilled TradeStatus = "filled"
	// TradeStatusCancelled means the exchange reported the order canceled.
	TradeStatusCancelled TradeStatus = "cancelled"
	// TradeStatusFailed means the order status could not be resolved. This is
	// terminal; the trade is not retried and its Pnl is forced to zero.
	TradeStatusFailed TradeStatus = "failed"
)

// Trade is the persisted record of one order placement. It is created by the
// trade executor and mutated only by the trade monitor thereafter; it is
// never deleted.
type Trade struct {
	ID              string      `json:"id"`
	BotID           string      `json:"bot_id"`
	Symbol          string      `json:"symbol"`
	Side            Side        `json:"side"`
	Type            OrderType   `json:"type"`
	Amount          float64     `json:"amount"`
	Price           float64     `json:"price"`
	Cost            float64     `json:"cost"` // amount x price at placement
	Fee             float64     `json:"fee"`
	Status          TradeStatus `json:"status"`
	ExchangeOrderID string      `json:"exchange_order_id"`
	Pnl             float64     `json:"pnl"` // realized profit, 0 until reconciled
	Strategy        string      `json:"strategy"`
	Reason          string      `json:"reason"` // rationale emitted by the strategy
	CreatedAt       time.Time   `json:"created_at"`
	ExecutedAt      *time.Time  `json:"executed_at,omitempty"` // set only when filled
}
