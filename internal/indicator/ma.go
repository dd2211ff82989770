// Package indicator provides the technical indicators used by the strategy
// modules, backed by go-talib.
package indicator

import (
	"github.com/markcheno/go-talib"
)

// SMA computes the simple moving average over the price series. The returned
// slice contains only fully warmed-up values (length len(prices)-period+1).
// Returns nil when the series is shorter than the period.
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	// go-talib pads the warm-up window with zeros; drop it so callers can
	// index from the first real value.
	return talib.Sma(prices, period)[period-1:]
}

// EMA computes the exponential moving average over the price series, with
// the warm-up window dropped. Returns nil when the series is too short.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	return talib.Ema(prices, period)[period-1:]
}

// Cross identifies a moving-average crossover event.
type Cross int

const (
	// CrossNone means no crossover occurred between the last two samples.
	CrossNone Cross = iota
	// CrossGolden means the fast average moved from at-or-below the slow
	// average to above it (bullish).
	CrossGolden
	// CrossDeath means the fast average moved from at-or-above the slow
	// average to below it (bearish).
	CrossDeath
)

// DetectCross compares the last two samples of the fast and slow series and
// reports whether a crossover happened. Returns CrossNone when either series
// is too short to compare.
func DetectCross(fast, slow []float64) Cross {
	if len(fast) < 2 || len(slow) < 2 {
		return CrossNone
	}

	curFast, prevFast := fast[len(fast)-1], fast[len(fast)-2]
	curSlow, prevSlow := slow[len(slow)-1], slow[len(slow)-2]

	if prevFast <= prevSlow && curFast > curSlow {
		return CrossGolden
	}
	if prevFast >= prevSlow && curFast < curSlow {
		return CrossDeath
	}
	return CrossNone
}

// LastValue returns the final value of an indicator series, reporting false
// when the series is empty.
func LastValue(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}
