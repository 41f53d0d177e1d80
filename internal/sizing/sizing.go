// Package sizing converts a risk percentage into a position size,
// grounded on risk/position_sizer.py.
package sizing

import "math"

// Calculate returns the position size such that, at the stop-loss price,
// the loss equals balance * effective_risk_percent / 100. The advisory
// multiplier is clamped to [0,1] before use — the mechanism that
// enforces "advisory may only tighten, never loosen" risk.
//
// Returns 0 when balance <= 0, stop_distance <= 0, or the effective risk
// percent resolves to <= 0.
func Calculate(balance, riskPercent, entryPrice, stopLossPrice, aiMultiplier, maxRiskPerTradePercent float64) float64 {
	if balance <= 0 {
		return 0
	}

	riskPercentCapped := math.Min(riskPercent, maxRiskPerTradePercent)
	if riskPercentCapped < 0 {
		riskPercentCapped = 0
	}

	clampedMultiplier := math.Min(math.Max(aiMultiplier, 0), 1)
	effectiveRiskPercent := riskPercentCapped * clampedMultiplier
	if effectiveRiskPercent <= 0 {
		return 0
	}

	stopDistance := math.Abs(entryPrice - stopLossPrice)
	if stopDistance <= 0 {
		return 0
	}

	riskAmount := balance * (effectiveRiskPercent / 100.0)
	size := riskAmount / stopDistance
	return math.Max(size, 0)
}
