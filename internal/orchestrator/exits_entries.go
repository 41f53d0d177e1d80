package orchestrator

import (
	"context"

	"tradecore/internal/advisory"
	"tradecore/internal/events"
	"tradecore/internal/exchange"
	"tradecore/internal/journal"
	"tradecore/internal/logging"
	"tradecore/internal/ohlcv"
	"tradecore/internal/position"
	"tradecore/internal/risk"
	"tradecore/internal/safety"
	"tradecore/internal/signal"
	"tradecore/internal/sizing"
	"tradecore/internal/trend"
)

// accountSnapshot takes the single consistent AccountState read the
// Hard Risk Validator observes for the whole entry phase, per spec.md
// §5's "consistent snapshot at entry-phase start" guarantee.
func (o *Orchestrator) accountSnapshot(ctx context.Context) risk.AccountState {
	balance := 0.0
	if balances, err := o.exchange.FetchBalance(ctx); err == nil {
		if b, ok := balances[o.balanceAsset]; ok {
			balance = b.Total
		}
	}
	if balance > o.peakBalance {
		o.peakBalance = balance
	}
	drawdown := 0.0
	if o.peakBalance > 0 {
		drawdown = (o.peakBalance - balance) / o.peakBalance * 100.0
	}

	return risk.AccountState{
		Balance:                balance,
		DailyPnLPercent:        o.session.DailyPnLPercent,
		CurrentDrawdownPercent: drawdown,
		ConsecutiveLosses:      o.positions.ConsecutiveLosses(),
		OpenPositions:          o.positions.Count(),
		TradesToday:            o.session.TradesToday,
	}
}

// manageExits runs the Exit Evaluator for every open position, updating
// each position's excursion trackers first, per spec.md §5's ordering
// guarantee that highest/lowest update precedes exit evaluation on the
// same tick.
func (o *Orchestrator) manageExits(ctx context.Context, candles5m []ohlcv.Candle) {
	logger := logging.FromContext(ctx)
	var price float64
	if closes := ohlcv.Closes(candles5m); len(closes) > 0 {
		price = closes[len(closes)-1]
	}

	for _, snap := range o.positions.OpenPositions() {
		pos, found := o.positions.Get(snap.ID)
		if !found {
			continue
		}

		exitPrice := price
		if exitPrice == 0 {
			if ticker, err := o.exchange.FetchTicker(ctx, pos.Symbol); err == nil {
				exitPrice = ticker.Last
			} else {
				logger.Warn().Err(err).Str("position_id", pos.ID).Msg("exit management: no price available")
				continue
			}
		}

		pos.UpdateExcursion(exitPrice)
		sig := signal.ManageExit(pos, exitPrice, o.now(), o.cfg.MaxPositionHoldHours)
		if sig == nil {
			continue
		}

		o.bus.Publish(events.NewEvent(events.ExitSignal, "orchestrator", map[string]any{
			"position_id": sig.PositionID,
			"exit_type":   string(sig.ExitType),
			"exit_price":  sig.ExitPrice,
		}))

		if sig.SizePercent >= 100 {
			o.closePosition(ctx, sig.PositionID, sig.ExitPrice, string(sig.ExitType))
		} else if err := o.positions.ApplyPartialExit(sig.PositionID, sig.SizePercent); err != nil {
			logger.Warn().Err(err).Str("position_id", sig.PositionID).Msg("partial exit failed")
		}
	}
}

// closePosition submits the closing order, records the trade, and
// updates the rolling session stats the advisory committee and risk
// validator read on the next tick.
func (o *Orchestrator) closePosition(ctx context.Context, id string, exitPrice float64, reason string) {
	logger := logging.FromContext(ctx)
	pos, found := o.positions.Get(id)
	if !found {
		return
	}

	side := exchange.Sell
	if pos.Side == position.Short {
		side = exchange.Buy
	}

	result, err := o.exchange.CreateOrder(ctx, pos.Symbol, exchange.OrderMarket, side, pos.RemainingSize, exchange.OrderParams{})
	if err != nil {
		logger.Error().Err(err).Str("position_id", id).Msg("close order failed")
		return
	}

	closed, err := o.positions.Close(id, result.AveragePrice, reason, o.now())
	if err != nil {
		logger.Error().Err(err).Str("position_id", id).Msg("position close bookkeeping failed")
		return
	}

	o.session.TradesToday++
	o.session.DailyPnLPercent += closed.PnLPercent
	o.session.LastTradeTime = o.now()
	if closed.PnLPercent < 0 {
		o.session.ConsecutiveLosses++
	} else if closed.PnLPercent > 0 {
		o.session.ConsecutiveLosses = 0
	}

	_ = o.journal.RecordTrade(ctx, journal.TradeRecord{
		TradeID:    closed.ID,
		Symbol:     closed.Symbol,
		Side:       string(closed.Side),
		EntryPrice: closed.EntryPrice,
		ExitPrice:  closed.ExitPrice,
		Amount:     closed.Size,
		EntryTime:  closed.OpenedAt,
		ExitTime:   closed.ExitTime,
		ExitReason: closed.ExitReason,
		PnLPercent: closed.PnLPercent,
	})

	o.bus.Publish(events.NewEvent(events.PositionClosed, "orchestrator", map[string]any{
		"position_id": closed.ID,
		"reason":      reason,
		"pnl_percent": closed.PnLPercent,
	}))
}

// evaluateEntry runs the Entry Evaluator, sizes the proposed trade under
// the advisory's risk multiplier, and gates it through the Hard Risk
// Validator before submitting an order.
func (o *Orchestrator) evaluateEntry(ctx context.Context, candles5m []ohlcv.Candle, bias trend.Bias, verdict advisory.Verdict, acct risk.AccountState) {
	logger := logging.FromContext(ctx)

	gate := signal.GateHalt
	switch verdict.Recommendation {
	case advisory.RecommendTrade:
		gate = signal.GateOpen
	case advisory.RecommendCooldown:
		gate = signal.GateCooldown
	}

	entry, err := signal.EvaluateEntry(candles5m, bias, gate, o.positions.Count(), o.cfg.RiskLimits.MaxOpenPositions, o.cfg.signalConfig())
	if err != nil || entry == nil {
		return
	}

	size := sizing.Calculate(acct.Balance, o.cfg.RiskLimits.MaxRiskPerTradePercent, entry.EntryPrice, entry.StopLoss, verdict.RiskMultiplier, o.cfg.RiskLimits.MaxRiskPerTradePercent)
	if size <= 0 {
		return
	}

	req := risk.TradeRequest{
		Symbol:       o.cfg.Symbol,
		PositionSize: size,
		EntryPrice:   entry.EntryPrice,
		StopLoss:     entry.StopLoss,
	}
	result := risk.Validate(req, acct, o.cfg.RiskLimits)

	o.bus.Publish(events.NewEvent(events.RiskValidation, "orchestrator", map[string]any{
		"approved": result.Approved,
		"reason":   string(result.Reason),
	}))

	if !result.Approved {
		o.bus.Publish(events.NewEvent(events.TradeRejected, "orchestrator", map[string]any{
			"reason": string(result.Reason),
		}))
		return
	}

	if o.safety != nil {
		checks := o.safety.CheckAll(o.session, safety.Request{
			Symbol:          o.cfg.Symbol,
			NotionalUSD:     size * entry.EntryPrice,
			AccountBalance:  acct.Balance,
			CurrentDrawdown: acct.CurrentDrawdownPercent,
		})
		if !safety.AllPassed(checks) {
			o.bus.Publish(events.NewEvent(events.TradeRejected, "orchestrator", map[string]any{
				"reason": "safety_constraint",
			}))
			return
		}
	}

	side := exchange.Buy
	if entry.Side == position.Short {
		side = exchange.Sell
	}

	fill, err := o.exchange.CreateOrder(ctx, o.cfg.Symbol, exchange.OrderMarket, side, size, exchange.OrderParams{})
	if err != nil {
		logger.Error().Err(err).Msg("entry order failed")
		return
	}

	pos := position.New(o.cfg.Symbol, entry.Side, fill.AveragePrice, fill.FilledAmount, entry.StopLoss, entry.TakeProfit1, entry.TakeProfit2, entry.ATR, o.now())
	o.positions.Open(pos)

	o.bus.Publish(events.NewEvent(events.TradeExecuted, "orchestrator", map[string]any{
		"order_id": fill.ID,
		"symbol":   o.cfg.Symbol,
	}))
	o.bus.Publish(events.NewEvent(events.PositionOpened, "orchestrator", map[string]any{
		"position_id": pos.ID,
		"side":        string(pos.Side),
	}))
}
