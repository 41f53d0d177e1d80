package advisory

import "strings"

// sentinel thresholds, mirrored from sentinel.py.
const (
	slippageWarningBps   = 50.0
	apiErrorCriticalCount = 5
	balanceMismatchPct   = 1.0
)

// AssessSentinel runs the Risk Sentinel's anomaly checks. Every check
// that fires appends to the anomaly list; later checks may escalate
// status from WARNING to CRITICAL but never downgrade it, matching the
// original's sequential overwrite of status/action.
func AssessSentinel(in SentinelInput) SentinelOutput {
	var anomalies []string
	status := SentinelHealthy
	action := "NONE"

	if in.AverageSlippageBps > slippageWarningBps {
		anomalies = append(anomalies, "HIGH_SLIPPAGE")
		status = SentinelWarning
		action = "REDUCE_SIZE"
	}

	if in.APIErrorCount1h > apiErrorCriticalCount {
		anomalies = append(anomalies, "API_ERRORS")
		status = SentinelCritical
		action = "PAUSE"
	}

	var balanceDiscrepancyPct float64
	if in.ExpectedBalance > 0 {
		balanceDiscrepancyPct = absFloat(in.AccountBalance-in.ExpectedBalance) / in.ExpectedBalance * 100.0
	}
	if balanceDiscrepancyPct > balanceMismatchPct {
		anomalies = append(anomalies, "BALANCE_MISMATCH")
		status = SentinelCritical
		action = "EMERGENCY_HALT"
	}

	if strings.ToUpper(in.ExchangeStatus) != "NORMAL" {
		anomalies = append(anomalies, "EXCHANGE_STATUS")
		status = SentinelCritical
		action = "PAUSE"
	}

	explanation := "no anomalies"
	if len(anomalies) > 0 {
		explanation = strings.Join(anomalies, "; ")
	}

	return SentinelOutput{
		Status:            status,
		AnomaliesDetected: anomalies,
		ActionRequired:    action,
		Explanation:       explanation,
	}
}
