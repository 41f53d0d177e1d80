package advisory

// choppyRangeThreshold is the recent-range percentage above which a
// near-zero EMA spread and sub-extreme ATR percentile reads as whipsaw
// rather than a quiet range.
const choppyRangeThreshold = 3.0

// ClassifyRegime runs the baseline deterministic regime rules: no
// external model, just ATR percentile, EMA50/EMA200 spread, and recent
// range. Rule order mirrors regime_classifier.py, with the CHOPPY check
// inserted ahead of RANGING since CHOPPY only fires on a strict superset
// of the ranging condition (narrow spread, non-extreme ATR) plus a wide
// recent range the original rules never otherwise consult.
func ClassifyRegime(in RegimeInput) RegimeOutput {
	spread := in.EMASpreadPercent
	atrPct := in.ATRPercentile

	if atrPct >= 90 {
		return RegimeOutput{
			Regime:          RegimeHighVolatility,
			Confidence:      0.7,
			VolatilityState: "EXTREME",
			Tradeable:       true,
			Reasoning:       "ATR percentile >= 90: high volatility, reduce size",
		}
	}

	if absFloat(spread) < 1.0 && in.RecentPriceRange >= choppyRangeThreshold {
		return RegimeOutput{
			Regime:          RegimeChoppy,
			Confidence:      0.6,
			VolatilityState: "WHIPSAW",
			Tradeable:       false,
			Reasoning:       "wide recent range with no EMA spread: choppy whipsaw",
		}
	}

	if absFloat(spread) < 1.0 {
		return RegimeOutput{
			Regime:          RegimeRanging,
			Confidence:      0.6,
			VolatilityState: "NORMAL",
			Tradeable:       true,
			Reasoning:       "EMA spread < 1%: ranging",
		}
	}

	if spread >= 1.0 {
		return RegimeOutput{
			Regime:          RegimeTrendingUp,
			Confidence:      0.7,
			VolatilityState: "NORMAL",
			Tradeable:       true,
			Reasoning:       "EMA50 above EMA200 by >= 1%",
		}
	}

	return RegimeOutput{
		Regime:          RegimeTrendingDown,
		Confidence:      0.7,
		VolatilityState: "NORMAL",
		Tradeable:       true,
		Reasoning:       "EMA50 below EMA200 by <= -1%",
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
