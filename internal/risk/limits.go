// Package risk implements the pre-trade Hard Risk Validator: a pure,
// order-fixed gate over the absolute invariants that neither advisory nor
// configuration may relax, grounded on risk/validators.py and
// risk/limits.py (the consolidated engine this module follows, per the
// grounding ledger's Open Question #1 decision).
package risk

// HardRiskLimits are absolute ceilings, read-only after process start.
type HardRiskLimits struct {
	MaxRiskPerTradePercent float64
	MinRiskPerTradePercent float64
	DailyLossCapPercent    float64
	MaxDrawdownPercent     float64
	MaxConsecutiveLosses   int
	MaxOpenPositions       int
	MaxTradesPerDay        int
}

// DefaultHardRiskLimits mirrors the original's dataclass defaults.
func DefaultHardRiskLimits() HardRiskLimits {
	return HardRiskLimits{
		MaxRiskPerTradePercent: 1.0,
		MinRiskPerTradePercent: 0.5,
		DailyLossCapPercent:    3.0,
		MaxDrawdownPercent:     10.0,
		MaxConsecutiveLosses:   5,
		MaxOpenPositions:       2,
		MaxTradesPerDay:        6,
	}
}
