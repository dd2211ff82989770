package strategy

import (
	"context"
	"fmt"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
	"github.com/your-org/trading-bot-engine/internal/indicator"
)

// MeanReversionName is the stable identifier for the RSI mean-reversion
// strategy.
const MeanReversionName = "rsi_reversion"

// rsiMidpoint separates the recovery-entry zone from the exhaustion-exit
// zone.
const rsiMidpoint = 50.0

type meanReversionParams struct {
	Period       int     `validate:"gt=1,lte=100"`
	Oversold     float64 `validate:"gt=0,lt=50"`
	Overbought   float64 `validate:"gt=50,lt=100"`
	PositionSize float64 `validate:"gt=0,lte=100"` // percent of allocation per entry
}

// MeanReversion buys oversold conditions and sells when the oscillator rolls
// over from overbought.
type MeanReversion struct{}

// NewMeanReversion creates the mean-reversion strategy module.
func NewMeanReversion() *MeanReversion {
	return &MeanReversion{}
}

// Name implements Strategy.
func (s *MeanReversion) Name() string { return MeanReversionName }

func (s *MeanReversion) params(settings map[string]any) (meanReversionParams, error) {
	p := meanReversionParams{
		Period:       14,
		Oversold:     30,
		Overbought:   70,
		PositionSize: 25,
	}
	var err error
	if p.Period, err = intSetting(settings, "rsiPeriod", p.Period); err != nil {
		return p, err
	}
	if p.Oversold, err = floatSetting(settings, "oversoldLevel", p.Oversold); err != nil {
		return p, err
	}
	if p.Overbought, err = floatSetting(settings, "overboughtLevel", p.Overbought); err != nil {
		return p, err
	}
	if p.PositionSize, err = floatSetting(settings, "positionSize", p.PositionSize); err != nil {
		return p, err
	}
	return p, checkParams(MeanReversionName, p)
}

// buyDecision sizes an entry as the configured percentage of the allocation.
func (s *MeanReversion) buyDecision(b *bot.Bot, p meanReversionParams, price float64, reason string) Decision {
	maxAmount := b.Allocation.Amount / price
	return Decision{
		Action: ActionBuy,
		Type:   bot.OrderTypeMarket,
		Amount: maxAmount * (p.PositionSize / 100),
		Price:  price,
		Reason: reason,
	}
}

// Evaluate implements Strategy.
func (s *MeanReversion) Evaluate(ctx context.Context, b *bot.Bot, snap Snapshot, _ exchange.Gateway) (Decision, error) {
	p, err := s.params(b.Settings)
	if err != nil {
		return Decision{}, err
	}

	rsi := indicator.RSI(snap.Closes, p.Period)
	if rsi == nil {
		return Hold("insufficient price history for RSI calculation"), nil
	}

	current, _ := indicator.LastValue(rsi)
	price := snap.LastPrice

	baseBalance := snap.FreeBalance(b.BaseCurrency())
	hasPosition := baseBalance > 0
	quoteBalance := snap.FreeBalance(b.Allocation.Currency)

	// Primary entry: oversold.
	if current <= p.Oversold && !hasPosition {
		if quoteBalance < b.Allocation.Amount*0.1 {
			return Hold("insufficient quote balance for oversold entry"), nil
		}
		reason := fmt.Sprintf("RSI oversold: %.2f <= %.2f", current, p.Oversold)
		return s.buyDecision(b, p, price, reason), nil
	}

	if len(rsi) >= 2 {
		previous := rsi[len(rsi)-2]

		// Alternate entry: recovery out of the oversold zone.
		if previous <= p.Oversold && current > p.Oversold && current < rsiMidpoint && !hasPosition {
			if quoteBalance >= b.Allocation.Amount*0.1 {
				reason := fmt.Sprintf("RSI recovery from oversold: previous %.2f, current %.2f", previous, current)
				return s.buyDecision(b, p, price, reason), nil
			}
		}

		// Exit: oscillator rolls over from overbought.
		if previous >= p.Overbought && current < p.Overbought && current > rsiMidpoint && hasPosition {
			return Decision{
				Action: ActionSell,
				Type:   bot.OrderTypeMarket,
				Amount: baseBalance * sellFraction,
				Price:  price,
				Reason: fmt.Sprintf("RSI decline from overbought: previous %.2f, current %.2f", previous, current),
			}, nil
		}
	}

	return Hold(fmt.Sprintf("RSI neutral: %.2f (oversold < %.0f, overbought > %.0f)", current, p.Oversold, p.Overbought)), nil
}
