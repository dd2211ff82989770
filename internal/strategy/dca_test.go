package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/trading-bot-engine/internal/bot"
)

func TestDCAFirstPurchase(t *testing.T) {
	s := NewDCA()
	b := newTestBot(DCAName, map[string]any{"amount": 25, "interval": "1h"})
	snap := Snapshot{LastPrice: 50, Balances: balances(0, 10000)}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, dec.Action)
	assert.Equal(t, bot.OrderTypeMarket, dec.Type)
	assert.InDelta(t, 25.0/50, dec.Amount, 1e-9)
}

func TestDCAIntervalGate(t *testing.T) {
	s := NewDCA()
	b := newTestBot(DCAName, map[string]any{"amount": 25, "interval": "1h"})
	snap := Snapshot{LastPrice: 50, Balances: balances(0, 10000)}

	// purchased 30 minutes ago: inside the interval, no repeat purchase
	b.LastExecution = time.Now().Add(-30 * time.Minute)
	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
	assert.Contains(t, dec.Reason, "interval")

	// purchased two hours ago: interval elapsed, purchase again
	b.LastExecution = time.Now().Add(-2 * time.Hour)
	dec, err = s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, dec.Action)
}

func TestDCAPriceCeiling(t *testing.T) {
	s := NewDCA()
	b := newTestBot(DCAName, map[string]any{"amount": 25, "maxPrice": 40})
	snap := Snapshot{LastPrice: 50, Balances: balances(0, 10000)}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
	assert.Contains(t, dec.Reason, "max price")

	// at or below the ceiling the purchase goes through
	snap.LastPrice = 40
	dec, err = s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, dec.Action)
}

func TestDCAInsufficientBalance(t *testing.T) {
	s := NewDCA()
	b := newTestBot(DCAName, map[string]any{"amount": 25})
	snap := Snapshot{LastPrice: 50, Balances: balances(0, 10)}

	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)
	assert.Contains(t, dec.Reason, "insufficient balance")
}

func TestDCAUnknownIntervalFallsBackToHourly(t *testing.T) {
	s := NewDCA()
	b := newTestBot(DCAName, map[string]any{"amount": 25, "interval": "7m"})
	snap := Snapshot{LastPrice: 50, Balances: balances(0, 10000)}

	b.LastExecution = time.Now().Add(-30 * time.Minute)
	dec, err := s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionHold, dec.Action)

	b.LastExecution = time.Now().Add(-61 * time.Minute)
	dec, err = s.Evaluate(context.Background(), b, snap, &stubGateway{})
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, dec.Action)
}
