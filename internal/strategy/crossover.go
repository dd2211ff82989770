package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
	"github.com/your-org/trading-bot-engine/internal/indicator"
)

// CrossoverName is the stable identifier for the SMA crossover strategy.
const CrossoverName = "sma_crossover"

// sellFraction is the share of the held base balance liquidated on an exit
// signal; the remainder absorbs fee and rounding slack.
const sellFraction = 0.95

// crossoverParams are the validated settings for the crossover strategy.
type crossoverParams struct {
	FastPeriod  int     `validate:"gt=0,lte=200"`
	SlowPeriod  int     `validate:"gt=0,lte=500,gtfield=FastPeriod"`
	StopLoss    float64 `validate:"gte=0,lte=50"`
	TakeProfit  float64 `validate:"gte=0,lte=100"`
	RiskPercent float64 `validate:"gt=0,lte=100"`
}

// Crossover is the trend-following strategy: buy on a golden cross of the
// fast moving average over the slow one, sell on the death cross.
type Crossover struct{}

// NewCrossover creates the crossover strategy module.
func NewCrossover() *Crossover {
	return &Crossover{}
}

// Name implements Strategy.
func (s *Crossover) Name() string { return CrossoverName }

func (s *Crossover) params(settings map[string]any) (crossoverParams, error) {
	p := crossoverParams{
		FastPeriod:  10,
		SlowPeriod:  30,
		StopLoss:    2,
		TakeProfit:  4,
		RiskPercent: 2,
	}
	var err error
	if p.FastPeriod, err = intSetting(settings, "fastPeriod", p.FastPeriod); err != nil {
		return p, err
	}
	if p.SlowPeriod, err = intSetting(settings, "slowPeriod", p.SlowPeriod); err != nil {
		return p, err
	}
	if p.StopLoss, err = floatSetting(settings, "stopLoss", p.StopLoss); err != nil {
		return p, err
	}
	if p.TakeProfit, err = floatSetting(settings, "takeProfit", p.TakeProfit); err != nil {
		return p, err
	}
	if p.RiskPercent, err = floatSetting(settings, "riskPercent", p.RiskPercent); err != nil {
		return p, err
	}
	return p, checkParams(CrossoverName, p)
}

// Evaluate implements Strategy.
func (s *Crossover) Evaluate(ctx context.Context, b *bot.Bot, snap Snapshot, _ exchange.Gateway) (Decision, error) {
	p, err := s.params(b.Settings)
	if err != nil {
		return Decision{}, err
	}

	fastSMA := indicator.SMA(snap.Closes, p.FastPeriod)
	slowSMA := indicator.SMA(snap.Closes, p.SlowPeriod)
	if fastSMA == nil || slowSMA == nil {
		return Hold("insufficient price history for SMA calculation"), nil
	}

	cross := indicator.DetectCross(fastSMA, slowSMA)
	price := snap.LastPrice

	baseBalance := snap.FreeBalance(b.BaseCurrency())
	hasPosition := baseBalance > 0

	curFast, _ := indicator.LastValue(fastSMA)
	curSlow, _ := indicator.LastValue(slowSMA)

	if cross == indicator.CrossGolden && !hasPosition {
		sizing := indicator.PositionSize(snap.FreeBalance(b.Allocation.Currency), price, p.RiskPercent)
		if sizing.Available < b.Allocation.Amount*0.1 {
			return Hold("insufficient quote balance for crossover entry"), nil
		}

		// Risk-sized entry, never exceeding the bot's capital allocation.
		amount := math.Min(b.Allocation.Amount/price, sizing.Size)
		stopLoss, takeProfit := indicator.StopLossTakeProfit(price, true, p.StopLoss, p.TakeProfit)

		return Decision{
			Action:     ActionBuy,
			Type:       bot.OrderTypeMarket,
			Amount:     amount,
			Price:      price,
			StopLoss:   stopLoss,
			TakeProfit: takeProfit,
			Reason:     fmt.Sprintf("golden cross: fast SMA (%.4f) crossed above slow SMA (%.4f)", curFast, curSlow),
		}, nil
	}

	if cross == indicator.CrossDeath && hasPosition {
		return Decision{
			Action: ActionSell,
			Type:   bot.OrderTypeMarket,
			Amount: baseBalance * sellFraction,
			Price:  price,
			Reason: fmt.Sprintf("death cross: fast SMA (%.4f) crossed below slow SMA (%.4f)", curFast, curSlow),
		}, nil
	}

	if hasPosition {
		return Hold("holding position, no exit signal"), nil
	}
	return Hold(fmt.Sprintf("no crossover: fast SMA %.4f, slow SMA %.4f", curFast, curSlow)), nil
}
