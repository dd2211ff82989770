package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// decliningCloses yields a strictly falling series; with no gaining samples
// the RSI saturates at 0, well inside the oversold zone.
func decliningCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 200.0
	for i := range closes {
		closes[i] = price
		price -= 2
	}
	return closes
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		closes[i] = price
		price += 2
	}
	return closes
}

func TestMeanReversionOversoldBuys(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	closes := decliningCloses(30)
	price := closes[len(closes)-1]
	snap := Snapshot{
		LastPrice: price,
		Closes:    closes,
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.Equal(t, bot.OrderTypeMarket, dec.Type)
	// 25% of the allocation at the current price
	assert.InDelta(t, (b.Allocation.Amount/price)*0.25, dec.Amount, 1e-9)
}

func TestMeanReversionOversoldIgnoredWhileHolding(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	closes := decliningCloses(30)
	snap := Snapshot{
		LastPrice: closes[len(closes)-1],
		Closes:    closes,
		Balances:  balances(3, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}

func TestMeanReversionRecoveryEntry(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	// long decline saturates the RSI near 0, then a single +15 bounce lifts
	// it out of the oversold zone but below the midpoint
	closes := decliningCloses(25)
	closes = append(closes, closes[len(closes)-1]+15)
	price := closes[len(closes)-1]
	snap := Snapshot{
		LastPrice: price,
		Closes:    closes,
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.Contains(t, dec.Reason, "recovery")
}

func TestMeanReversionOverboughtDeclineSells(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	// long rally saturates the RSI near 100, then a single -15 drop pulls it
	// below the overbought level but above the midpoint
	closes := risingCloses(25)
	closes = append(closes, closes[len(closes)-1]-15)
	snap := Snapshot{
		LastPrice: closes[len(closes)-1],
		Closes:    closes,
		Balances:  balances(4, 100),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionSell, dec.Action)
	assert.Equal(t, bot.OrderTypeMarket, dec.Type)
	assert.InDelta(t, 4*0.95, dec.Amount, 1e-9)
}

func TestMeanReversionOverboughtDeclineWithoutPositionHolds(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	closes := risingCloses(25)
	closes = append(closes, closes[len(closes)-1]-15)
	snap := Snapshot{
		LastPrice: closes[len(closes)-1],
		Closes:    closes,
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}

func TestMeanReversionNeutralHolds(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	// alternating gains and losses of equal size pin the RSI at 50
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}
	snap := Snapshot{
		LastPrice: closes[len(closes)-1],
		Closes:    closes,
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
	assert.Contains(t, dec.Reason, "neutral")
}

func TestMeanReversionOversoldInsufficientBalance(t *testing.T) {
	s := NewMeanReversion()
	b := newTestBot(MeanReversionName, nil)
	closes := decliningCloses(30)
	snap := Snapshot{
		LastPrice: closes[len(closes)-1],
		Closes:    closes,
		Balances:  balances(0, 50), // below 10% of the allocation
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}
