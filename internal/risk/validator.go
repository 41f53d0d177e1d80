package risk

import "math"

// Reason is a machine-checkable rejection code.
type Reason string

const (
	ReasonDailyLossCapHit        Reason = "DAILY_LOSS_CAP_HIT"
	ReasonMaxDrawdownHit         Reason = "MAX_DRAWDOWN_HIT"
	ReasonMaxConsecutiveLosses   Reason = "MAX_CONSECUTIVE_LOSSES_HIT"
	ReasonMaxPositionsReached    Reason = "MAX_POSITIONS_REACHED"
	ReasonMaxDailyTradesReached  Reason = "MAX_DAILY_TRADES_REACHED"
	ReasonRiskPerTradeExceeded   Reason = "RISK_PER_TRADE_EXCEEDED"
	ReasonAllChecksPassed        Reason = "ALL_CHECKS_PASSED"
)

// TradeRequest is the proposed trade the validator gates.
type TradeRequest struct {
	Symbol       string
	PositionSize float64
	EntryPrice   float64
	StopLoss     float64
}

// AccountState is the account snapshot the validator checks the request
// against, taken once at the start of the entry phase per the
// orchestrator's single-writer ordering guarantee.
type AccountState struct {
	Balance                 float64
	DailyPnLPercent         float64
	CurrentDrawdownPercent  float64
	ConsecutiveLosses       int
	OpenPositions           int
	TradesToday             int
}

// Result is the validator's structured, branch-traceable verdict —
// returned rather than thrown, per the original design note that this is
// the core's most-tested function.
type Result struct {
	Approved bool
	Reason   Reason
	Details  map[string]any
}

// TradeRiskPercent computes the percentage of balance at risk for a
// request: size * |entry - stop| / balance * 100.
func TradeRiskPercent(positionSize, entryPrice, stopLoss, balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	stopDistance := math.Abs(entryPrice - stopLoss)
	if stopDistance <= 0 {
		return 0
	}
	riskAmount := positionSize * stopDistance
	return riskAmount / balance * 100.0
}

// Validate evaluates the seven ordered invariants, returning on the first
// failure. Pure: no mutation, no I/O.
func Validate(req TradeRequest, acct AccountState, limits HardRiskLimits) Result {
	if acct.DailyPnLPercent <= -limits.DailyLossCapPercent {
		return Result{Approved: false, Reason: ReasonDailyLossCapHit, Details: map[string]any{
			"daily_pnl_percent":    acct.DailyPnLPercent,
			"daily_loss_cap_percent": limits.DailyLossCapPercent,
		}}
	}
	if acct.CurrentDrawdownPercent >= limits.MaxDrawdownPercent {
		return Result{Approved: false, Reason: ReasonMaxDrawdownHit, Details: map[string]any{
			"current_drawdown_percent": acct.CurrentDrawdownPercent,
			"max_drawdown_percent":     limits.MaxDrawdownPercent,
		}}
	}
	if acct.ConsecutiveLosses >= limits.MaxConsecutiveLosses {
		return Result{Approved: false, Reason: ReasonMaxConsecutiveLosses, Details: map[string]any{
			"consecutive_losses":     acct.ConsecutiveLosses,
			"max_consecutive_losses": limits.MaxConsecutiveLosses,
		}}
	}
	if acct.OpenPositions >= limits.MaxOpenPositions {
		return Result{Approved: false, Reason: ReasonMaxPositionsReached, Details: map[string]any{
			"open_positions":     acct.OpenPositions,
			"max_open_positions": limits.MaxOpenPositions,
		}}
	}
	if acct.TradesToday >= limits.MaxTradesPerDay {
		return Result{Approved: false, Reason: ReasonMaxDailyTradesReached, Details: map[string]any{
			"trades_today":       acct.TradesToday,
			"max_trades_per_day": limits.MaxTradesPerDay,
		}}
	}

	tradeRiskPercent := TradeRiskPercent(req.PositionSize, req.EntryPrice, req.StopLoss, acct.Balance)
	if tradeRiskPercent > limits.MaxRiskPerTradePercent {
		return Result{Approved: false, Reason: ReasonRiskPerTradeExceeded, Details: map[string]any{
			"trade_risk_percent":        tradeRiskPercent,
			"max_risk_per_trade_percent": limits.MaxRiskPerTradePercent,
		}}
	}

	return Result{Approved: true, Reason: ReasonAllChecksPassed}
}
