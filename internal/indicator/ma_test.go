package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAReturnsNilForShortSeries(t *testing.T) {
	assert.Nil(t, SMA([]float64{1, 2}, 3))
	assert.Nil(t, SMA(nil, 3))
	assert.Nil(t, SMA([]float64{1, 2, 3}, 0))
}

func TestSMAValues(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 3)
	assert.InDelta(t, 2.0, got[0], 1e-9)
	assert.InDelta(t, 3.0, got[1], 1e-9)
	assert.InDelta(t, 4.0, got[2], 1e-9)
}

func TestDetectCrossGolden(t *testing.T) {
	// Fast moves from below slow to above slow between the last two samples.
	fast := []float64{9.0, 11.0}
	slow := []float64{10.0, 10.0}
	assert.Equal(t, CrossGolden, DetectCross(fast, slow))
}

func TestDetectCrossGoldenFromEqual(t *testing.T) {
	fast := []float64{10.0, 11.0}
	slow := []float64{10.0, 10.0}
	assert.Equal(t, CrossGolden, DetectCross(fast, slow))
}

func TestDetectCrossDeath(t *testing.T) {
	fast := []float64{11.0, 9.0}
	slow := []float64{10.0, 10.0}
	assert.Equal(t, CrossDeath, DetectCross(fast, slow))
}

func TestDetectCrossNone(t *testing.T) {
	// Fast stays above slow: no event.
	fast := []float64{11.0, 12.0}
	slow := []float64{10.0, 10.0}
	assert.Equal(t, CrossNone, DetectCross(fast, slow))

	// Too short to compare.
	assert.Equal(t, CrossNone, DetectCross([]float64{1}, []float64{1, 2}))
}

func TestLastValue(t *testing.T) {
	v, ok := LastValue([]float64{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = LastValue(nil)
	assert.False(t, ok)
}
