package indicator

import (
	"github.com/markcheno/go-talib"
)

// RSI computes the relative strength index over the price series with the
// warm-up window dropped (length len(prices)-period). Returns nil when the
// series is shorter than period+1 samples.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}
	return talib.Rsi(prices, period)[period:]
}
