package signal

import (
	"time"

	"tradecore/internal/position"
)

// ExitType identifies why a position is being closed or partially closed.
type ExitType string

const (
	ExitStopLoss     ExitType = "STOP_LOSS"
	ExitTakeProfit1  ExitType = "TAKE_PROFIT_1"
	ExitTrailingStop ExitType = "TRAILING_STOP"
	ExitTimeLimit    ExitType = "TIME_LIMIT"
)

const trailingATRMult = 1.0

// ExitSignal instructs the Position Manager to close some fraction of a
// position.
type ExitSignal struct {
	PositionID  string
	ExitType    ExitType
	ExitPrice   float64
	SizePercent float64
}

// ManageExit evaluates the PRE_TP1/POST_TP1 state machine for a single
// position. Callers must call Position.UpdateExcursion(currentPrice)
// before this, since TRAILING_STOP depends on the running
// highest/lowest. When multiple triggers fire on the same tick, the
// precedence is STOP_LOSS > TAKE_PROFIT_1 > TRAILING_STOP > TIME_LIMIT.
func ManageExit(p *position.Position, currentPrice float64, now time.Time, maxHoldHours float64) *ExitSignal {
	if p.Status != position.StatusOpen {
		return nil
	}

	if sig := checkStopLoss(p, currentPrice); sig != nil {
		return sig
	}
	if !p.TP1Hit {
		if sig := checkTakeProfit1(p, currentPrice); sig != nil {
			return sig
		}
	} else if sig := checkTrailingStop(p, currentPrice); sig != nil {
		return sig
	}
	if sig := checkTimeLimit(p, currentPrice, now, maxHoldHours); sig != nil {
		return sig
	}
	return nil
}

func checkStopLoss(p *position.Position, price float64) *ExitSignal {
	triggered := false
	switch p.Side {
	case position.Long:
		triggered = price <= p.StopLoss
	case position.Short:
		triggered = price >= p.StopLoss
	}
	if !triggered {
		return nil
	}
	return &ExitSignal{PositionID: p.ID, ExitType: ExitStopLoss, ExitPrice: price, SizePercent: 100}
}

func checkTakeProfit1(p *position.Position, price float64) *ExitSignal {
	triggered := false
	switch p.Side {
	case position.Long:
		triggered = price >= p.TakeProfit1
	case position.Short:
		triggered = price <= p.TakeProfit1
	}
	if !triggered {
		return nil
	}
	return &ExitSignal{PositionID: p.ID, ExitType: ExitTakeProfit1, ExitPrice: price, SizePercent: 50}
}

func checkTrailingStop(p *position.Position, price float64) *ExitSignal {
	var trailingStop float64
	triggered := false
	switch p.Side {
	case position.Long:
		trailingStop = p.HighestPrice - trailingATRMult*p.EntryATR
		triggered = price <= trailingStop
	case position.Short:
		trailingStop = p.LowestPrice + trailingATRMult*p.EntryATR
		triggered = price >= trailingStop
	}
	if !triggered {
		return nil
	}
	return &ExitSignal{PositionID: p.ID, ExitType: ExitTrailingStop, ExitPrice: price, SizePercent: 100}
}

func checkTimeLimit(p *position.Position, price float64, now time.Time, maxHoldHours float64) *ExitSignal {
	if maxHoldHours <= 0 {
		return nil
	}
	held := now.Sub(p.OpenedAt).Hours()
	if held <= maxHoldHours {
		return nil
	}
	return &ExitSignal{PositionID: p.ID, ExitType: ExitTimeLimit, ExitPrice: price, SizePercent: 100}
}
