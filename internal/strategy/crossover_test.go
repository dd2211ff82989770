package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

// Short periods keep the hand-computed series small: fast SMA(2) and slow
// SMA(3) over six closes are enough to force a cross on the final sample.
func crossoverSettings() map[string]any {
	return map[string]any{"fastPeriod": 2, "slowPeriod": 3}
}

func TestCrossoverGoldenCrossBuys(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	snap := Snapshot{
		LastPrice: 30,
		// fast SMA jumps above slow SMA on the last close
		Closes:   []float64{10, 10, 10, 9, 8, 30},
		Balances: balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.Equal(t, bot.OrderTypeMarket, dec.Type)
	// risk-sized: 2% of the 10000 quote balance at price 30
	assert.InDelta(t, 10000*0.02/30, dec.Amount, 1e-9)
	assert.InDelta(t, 30*0.98, dec.StopLoss, 1e-9)
	assert.InDelta(t, 30*1.04, dec.TakeProfit, 1e-9)
}

func TestCrossoverGoldenCrossCappedByAllocation(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	b.Settings["riskPercent"] = 90 // risk budget larger than the allocation
	snap := Snapshot{
		LastPrice: 30,
		Closes:    []float64{10, 10, 10, 9, 8, 30},
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.InDelta(t, b.Allocation.Amount/30, dec.Amount, 1e-9)
}

func TestCrossoverGoldenCrossInsufficientBalance(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	snap := Snapshot{
		LastPrice: 30,
		Closes:    []float64{10, 10, 10, 9, 8, 30},
		Balances:  balances(0, 50), // below 10% of the 1000 allocation
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}

func TestCrossoverGoldenCrossIgnoredWhileHolding(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	snap := Snapshot{
		LastPrice: 30,
		Closes:    []float64{10, 10, 10, 9, 8, 30},
		Balances:  balances(1.5, 10000), // already in a position
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
	assert.Equal(t, "holding position, no exit signal", dec.Reason)
}

func TestCrossoverDeathCrossSells(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	snap := Snapshot{
		LastPrice: 1,
		// fast SMA drops below slow SMA on the last close
		Closes:   []float64{10, 10, 10, 11, 12, 1},
		Balances: balances(2, 0),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionSell, dec.Action)
	assert.Equal(t, bot.OrderTypeMarket, dec.Type)
	// sells 95% of the held base balance
	assert.InDelta(t, 2*0.95, dec.Amount, 1e-9)
}

func TestCrossoverDeathCrossWithoutPositionHolds(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	snap := Snapshot{
		LastPrice: 1,
		Closes:    []float64{10, 10, 10, 11, 12, 1},
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}

func TestCrossoverNoCrossHolds(t *testing.T) {
	s := NewCrossover()
	b := newTestBot(CrossoverName, crossoverSettings())
	snap := Snapshot{
		LastPrice: 10,
		Closes:    []float64{10, 10, 10, 10, 10, 10},
		Balances:  balances(0, 10000),
	}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}
