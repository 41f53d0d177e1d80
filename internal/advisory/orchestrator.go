package advisory

import (
	"fmt"

	"tradecore/internal/events"
)

// Analyze runs all three agents (they have no dependency on one
// another so nothing here prevents a caller from having fetched their
// inputs concurrently) and combines the results into one Verdict. A
// CRITICAL sentinel status always overrides the Governor's verdict to
// HALT, mirroring orchestrator.py's "sentinel wins" rule — this is where
// the advisory committee enforces its "may only tighten, never loosen"
// invariant for a CRITICAL sentinel; sizing.Calculate separately clamps
// whatever RiskMultiplier it receives to [0,1].
func Analyze(regimeIn RegimeInput, governorIn GovernorInput, sentinelIn SentinelInput, bus *events.Bus) Verdict {
	regimeOut := ClassifyRegime(regimeIn)
	governorIn.Regime = regimeOut.Regime
	governorOut := GovernAt(governorIn)
	sentinelOut := AssessSentinel(sentinelIn)

	recommendation := governorOut.Recommendation
	riskMultiplier := governorOut.RiskMultiplier
	cooldown := governorOut.CooldownMinutes

	if sentinelOut.Status == SentinelCritical {
		recommendation = RecommendHalt
		riskMultiplier = 0.0
		cooldown = 0
	}

	verdict := Verdict{
		Regime:          regimeOut.Regime,
		Confidence:      regimeOut.Confidence,
		VolatilityState: regimeOut.VolatilityState,
		Tradeable:       regimeOut.Tradeable && recommendation == RecommendTrade,
		Recommendation:  recommendation,
		RiskMultiplier:  riskMultiplier,
		CooldownMinutes: cooldown,
		SentinelStatus:  sentinelOut.Status,
		Anomalies:       sentinelOut.AnomaliesDetected,
		Reasoning: fmt.Sprintf("Regime: %s; Governor: %s; Sentinel: %s",
			regimeOut.Reasoning, governorOut.Reasoning, sentinelOut.Explanation),
	}

	if bus != nil {
		bus.Publish(events.NewEvent(events.AIAdvisory, "advisory.Orchestrator", map[string]any{
			"regime":          string(verdict.Regime),
			"recommendation":  string(verdict.Recommendation),
			"risk_multiplier": verdict.RiskMultiplier,
			"sentinel_status": string(verdict.SentinelStatus),
		}))
	}

	return verdict
}
