package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

// DCAName is the stable identifier for the periodic-purchase strategy.
const DCAName = "dca"

type dcaParams struct {
	Amount   float64 `validate:"gt=0"`  // quote notional per purchase
	MaxPrice float64 `validate:"gte=0"` // 0 means no ceiling
	Interval string  `validate:"required"`
}

// purchaseIntervals maps the supported interval settings to durations.
// Unrecognized values fall back to one hour.
var purchaseIntervals = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
}

// DCA buys a fixed quote notional at market on a fixed schedule, gated by a
// price ceiling and available balance.
type DCA struct{}

// NewDCA creates the periodic-purchase strategy module.
func NewDCA() *DCA {
	return &DCA{}
}

// Name implements Strategy.
func (s *DCA) Name() string { return DCAName }

func (s *DCA) params(settings map[string]any) (dcaParams, error) {
	p := dcaParams{
		Amount:   10,
		MaxPrice: 0,
		Interval: "1h",
	}
	var err error
	if p.Amount, err = floatSetting(settings, "amount", p.Amount); err != nil {
		return p, err
	}
	if p.MaxPrice, err = floatSetting(settings, "maxPrice", p.MaxPrice); err != nil {
		return p, err
	}
	if p.Interval, err = stringSetting(settings, "interval", p.Interval); err != nil {
		return p, err
	}
	return p, checkParams(DCAName, p)
}

// Evaluate implements Strategy.
func (s *DCA) Evaluate(ctx context.Context, b *bot.Bot, snap Snapshot, _ exchange.Gateway) (Decision, error) {
	p, err := s.params(b.Settings)
	if err != nil {
		return Decision{}, err
	}

	price := snap.LastPrice

	// Gate 1: price ceiling.
	if p.MaxPrice > 0 && price > p.MaxPrice {
		return Hold(fmt.Sprintf("price %.4f exceeds max price %.4f", price, p.MaxPrice)), nil
	}

	// Gate 2: available balance.
	available := snap.FreeBalance(b.Allocation.Currency)
	if available < p.Amount {
		return Hold(fmt.Sprintf("insufficient balance: available %.4f, required %.4f", available, p.Amount)), nil
	}

	// Gate 3: purchase interval.
	interval, ok := purchaseIntervals[p.Interval]
	if !ok {
		interval = time.Hour
	}
	elapsed := time.Since(b.LastExecution)
	if !b.LastExecution.IsZero() && elapsed < interval {
		remaining := time.Duration(math.Ceil((interval - elapsed).Minutes())) * time.Minute
		return Hold(fmt.Sprintf("purchase interval not reached, next purchase in %s", remaining)), nil
	}

	return Decision{
		Action: ActionBuy,
		Type:   bot.OrderTypeMarket,
		Amount: p.Amount / price,
		Price:  price,
		Reason: fmt.Sprintf("periodic purchase: %.2f %s every %s", p.Amount, b.Allocation.Currency, p.Interval),
	}, nil
}
