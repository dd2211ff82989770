package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/trading-bot-engine/internal/bot"
	"github.com/your-org/trading-bot-engine/internal/exchange"
)

func gridSettings() map[string]any {
	return map[string]any{"gridLevels": 4, "gridSpacing": 1, "orderSize": 100}
}

func newTestGrid() *Grid {
	return NewGrid(0.001, 0.1)
}

func TestComputeGridLevelsSymmetry(t *testing.T) {
	levels := ComputeGridLevels(100, 4, 1)

	want := GridLevels{
		Buy:  []float64{99, 98},
		Sell: []float64{101, 102},
	}
	if diff := cmp.Diff(want, levels); diff != "" {
		t.Errorf("ComputeGridLevels mismatch (-want +got):\n%s", diff)
	}

	// each buy level mirrors a sell level around the center
	for i := range levels.Buy {
		assert.InDelta(t, 100, (levels.Buy[i]+levels.Sell[i])/2, 1e-9)
	}
}

func TestGridProposesClosestVacantBuyLevel(t *testing.T) {
	s := newTestGrid()
	b := newTestBot(GridName, gridSettings())
	snap := Snapshot{LastPrice: 100, Balances: balances(0, 10000)}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.Equal(t, bot.OrderTypeLimit, dec.Type)
	assert.InDelta(t, 99, dec.Price, 1e-9)
	assert.InDelta(t, 100.0/99, dec.Amount, 1e-9)
}

func TestGridToleranceSkipsOccupiedLevel(t *testing.T) {
	s := newTestGrid()
	b := newTestBot(GridName, gridSettings())
	snap := Snapshot{LastPrice: 100, Balances: balances(0, 10000)}
	gw := &stubGateway{openOrders: []exchange.Order{
		// within 0.1% of the 99 level, so the level counts as occupied
		{Side: bot.SideBuy, Price: 99.05, Status: exchange.OrderStatusOpen},
	}}

	dec, err := s.Evaluate(context.Background(), b, snap, gw)
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.InDelta(t, 98, dec.Price, 1e-9)
}

func TestGridProposesSellWhenBuySideFull(t *testing.T) {
	s := newTestGrid()
	b := newTestBot(GridName, gridSettings())
	snap := Snapshot{LastPrice: 100, Balances: balances(5, 10000)}
	gw := &stubGateway{openOrders: []exchange.Order{
		{Side: bot.SideBuy, Price: 99, Status: exchange.OrderStatusOpen},
		{Side: bot.SideBuy, Price: 98, Status: exchange.OrderStatusOpen},
	}}

	dec, err := s.Evaluate(context.Background(), b, snap, gw)
	require.NoError(t, err)

	assert.Equal(t, ActionSell, dec.Action)
	assert.Equal(t, bot.OrderTypeLimit, dec.Type)
	assert.InDelta(t, 101, dec.Price, 1e-9)
	// capped at 10% of the 5.0 base balance, below the 100/101 notional size
	assert.InDelta(t, 0.5, dec.Amount, 1e-9)
}

func TestGridSellSideSkippedWithoutInventory(t *testing.T) {
	s := newTestGrid()
	b := newTestBot(GridName, gridSettings())
	snap := Snapshot{LastPrice: 100, Balances: balances(0, 10000)}
	gw := &stubGateway{openOrders: []exchange.Order{
		{Side: bot.SideBuy, Price: 99, Status: exchange.OrderStatusOpen},
		{Side: bot.SideBuy, Price: 98, Status: exchange.OrderStatusOpen},
	}}

	dec, err := s.Evaluate(context.Background(), b, snap, gw)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
}

func TestGridHoldsWhenLadderComplete(t *testing.T) {
	s := newTestGrid()
	b := newTestBot(GridName, gridSettings())
	snap := Snapshot{LastPrice: 100, Balances: balances(5, 10000)}
	gw := &stubGateway{openOrders: []exchange.Order{
		{Side: bot.SideBuy, Price: 99, Status: exchange.OrderStatusOpen},
		{Side: bot.SideBuy, Price: 98, Status: exchange.OrderStatusOpen},
		{Side: bot.SideSell, Price: 101, Status: exchange.OrderStatusOpen},
		{Side: bot.SideSell, Price: 102, Status: exchange.OrderStatusOpen},
	}}

	dec, err := s.Evaluate(context.Background(), b, snap, gw)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
	assert.Contains(t, dec.Reason, "grid maintained")
}

func TestGridOpenOrderFetchFailure(t *testing.T) {
	s := newTestGrid()
	b := newTestBot(GridName, gridSettings())
	snap := Snapshot{LastPrice: 100, Balances: balances(0, 10000)}
	gw := &stubGateway{openOrdersErr: errors.New("exchange unavailable")}

	_, err := s.Evaluate(context.Background(), b, snap, gw)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSettings)
}
