package strategy

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

// GridName is the stable identifier for the grid strategy.
const GridName = "grid"

type gridParams struct {
	Levels    int     `validate:"gte=2,lte=100"`
	Spacing   float64 `validate:"gt=0,lte=50"` // percent between adjacent levels
	OrderSize float64 `validate:"gt=0"`        // quote notional per level
}

// Grid maintains a ladder of limit orders spaced symmetrically around a
// center price. It proposes at most one missing order per cycle to
// rate-limit placement.
type Grid struct {
	// Tolerance is the relative price distance under which an open order is
	// considered to already occupy a level.
	Tolerance float64
	// SellCapRatio is the max fraction of the held base balance a single
	// grid sell may liquidate.
	SellCapRatio float64
}

// NewGrid creates the grid strategy module with the given tunables.
func NewGrid(tolerance, sellCapRatio float64) *Grid {
	return &Grid{Tolerance: tolerance, SellCapRatio: sellCapRatio}
}

// Name implements Strategy.
func (s *Grid) Name() string { return GridName }

func (s *Grid) params(settings map[string]any) (gridParams, error) {
	p := gridParams{
		Levels:    10,
		Spacing:   1,
		OrderSize: 50,
	}
	var err error
	if p.Levels, err = intSetting(settings, "gridLevels", p.Levels); err != nil {
		return p, err
	}
	if p.Spacing, err = floatSetting(settings, "gridSpacing", p.Spacing); err != nil {
		return p, err
	}
	if p.OrderSize, err = floatSetting(settings, "orderSize", p.OrderSize); err != nil {
		return p, err
	}
	return p, checkParams(GridName, p)
}

// GridLevels are the ladder prices derived from a center price. Buy levels
// are sorted highest first (closest to the center), sell levels lowest
// first.
type GridLevels struct {
	Buy  []float64
	Sell []float64
}

// ComputeGridLevels derives levels/2 prices on each side of the center,
// spaced by the given percentage. Exported for the tests that assert ladder
// symmetry.
func ComputeGridLevels(center float64, levels int, spacingPercent float64) GridLevels {
	half := levels / 2
	out := GridLevels{
		Buy:  make([]float64, 0, half),
		Sell: make([]float64, 0, half),
	}
	for i := 1; i <= half; i++ {
		out.Buy = append(out.Buy, center*(1-spacingPercent*float64(i)/100))
		out.Sell = append(out.Sell, center*(1+spacingPercent*float64(i)/100))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out.Buy)))
	sort.Float64s(out.Sell)
	return out
}

// occupied reports whether any open order sits within tolerance of the
// level price.
func (s *Grid) occupied(orders []exchange.Order, side bot.Side, level float64) bool {
	for _, o := range orders {
		if o.Side != side {
			continue
		}
		if math.Abs(o.Price-level)/level < s.Tolerance {
			return true
		}
	}
	return false
}

// Evaluate implements Strategy. The gateway is used for order-book
// introspection only: open orders decide which levels still need an order.
func (s *Grid) Evaluate(ctx context.Context, b *bot.Bot, snap Snapshot, gw exchange.Gateway) (Decision, error) {
	p, err := s.params(b.Settings)
	if err != nil {
		return Decision{}, err
	}

	price := snap.LastPrice
	center := price // basePrice "current"; a pinned center could be added later

	openOrders, err := gw.FetchOpenOrders(ctx, b.Symbol)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to fetch open orders for grid: %w", err)
	}

	levels := ComputeGridLevels(center, p.Levels, p.Spacing)

	// Buy side: fill the first vacant level below the current price.
	for _, level := range levels.Buy {
		if level >= price || s.occupied(openOrders, bot.SideBuy, level) {
			continue
		}
		return Decision{
			Action: ActionBuy,
			Type:   bot.OrderTypeLimit,
			Amount: p.OrderSize / level,
			Price:  level,
			Reason: fmt.Sprintf("grid buy order at %.4f", level),
		}, nil
	}

	// Sell side: fill the first vacant level above the current price,
	// capped so a single order never liquidates more than the configured
	// share of the position.
	baseBalance := snap.FreeBalance(b.BaseCurrency())
	if baseBalance > 0 {
		for _, level := range levels.Sell {
			if level <= price || s.occupied(openOrders, bot.SideSell, level) {
				continue
			}
			amount := math.Min(p.OrderSize/level, baseBalance*s.SellCapRatio)
			if amount <= 0 {
				continue
			}
			return Decision{
				Action: ActionSell,
				Type:   bot.OrderTypeLimit,
				Amount: amount,
				Price:  level,
				Reason: fmt.Sprintf("grid sell order at %.4f", level),
			}, nil
		}
	}

	return Hold(fmt.Sprintf("grid maintained: %d orders active", len(openOrders))), nil
}
