package indicator

// PositionSizing is the result of a risk-based position size calculation.
type PositionSizing struct {
	// Size is the base-asset amount the risk budget buys at the given price.
	Size float64
	// Value is the quote-asset risk budget.
	Value float64
	// Available is the free quote balance the budget was taken from.
	Available float64
}

// PositionSize computes a position size as a fixed percentage of the free
// balance in the given currency.
func PositionSize(available, price, riskPercent float64) PositionSizing {
	if price <= 0 {
		return PositionSizing{Available: available}
	}
	riskAmount := available * (riskPercent / 100)
	return PositionSizing{
		Size:      riskAmount / price,
		Value:     riskAmount,
		Available: available,
	}
}

// StopLossTakeProfit computes absolute stop-loss and take-profit prices as
// percentage offsets from the entry price. For a sell entry the offsets are
// mirrored.
func StopLossTakeProfit(entryPrice float64, buySide bool, stopLossPercent, takeProfitPercent float64) (stopLoss, takeProfit float64) {
	if buySide {
		return entryPrice * (1 - stopLossPercent/100), entryPrice * (1 + takeProfitPercent/100)
	}
	return entryPrice * (1 + stopLossPercent/100), entryPrice * (1 - takeProfitPercent/100)
}
