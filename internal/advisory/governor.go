package advisory

// GovernAt applies the Strategy Governor's decision tree: first match
// wins, mirroring governor.py's cascading early returns.
func GovernAt(in GovernorInput) GovernorOutput {
	if in.Regime == RegimeChoppy {
		return GovernorOutput{
			Recommendation: RecommendHalt,
			RiskMultiplier: 0.0,
			Reasoning:      "choppy regime: no trade",
			Alerts:         []string{"CHOPPY_REGIME"},
		}
	}

	if in.DailyPnLPercent <= -2.0 {
		return GovernorOutput{
			Recommendation: RecommendHalt,
			RiskMultiplier: 0.0,
			Reasoning:      "daily loss exceeded 2%",
			Alerts:         []string{"DAILY_LOSS_THRESHOLD"},
		}
	}

	if in.TradesToday >= in.MaxTradesPerDay {
		return GovernorOutput{
			Recommendation: RecommendHalt,
			RiskMultiplier: 0.0,
			Reasoning:      "max trades per day reached",
			Alerts:         []string{"MAX_TRADES_REACHED"},
		}
	}

	if in.ConsecutiveLosses >= 3 {
		return GovernorOutput{
			Recommendation:  RecommendCooldown,
			RiskMultiplier:  0.5,
			CooldownMinutes: 30,
			Reasoning:       "3 consecutive losses",
			Alerts:          []string{"CONSECUTIVE_LOSSES_3"},
		}
	}

	if in.ConsecutiveLosses >= 2 {
		return GovernorOutput{
			Recommendation: RecommendTrade,
			RiskMultiplier: 0.75,
			Reasoning:      "2 consecutive losses: reduce risk",
			Alerts:         []string{"CONSECUTIVE_LOSSES_2"},
		}
	}

	if in.Regime == RegimeHighVolatility {
		return GovernorOutput{
			Recommendation: RecommendTrade,
			RiskMultiplier: 0.5,
			Reasoning:      "high volatility: reduce risk",
			Alerts:         []string{"HIGH_VOLATILITY"},
		}
	}

	return GovernorOutput{
		Recommendation: RecommendTrade,
		RiskMultiplier: 1.0,
		Reasoning:      "normal operation",
	}
}
