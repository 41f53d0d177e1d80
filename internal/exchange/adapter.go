// Package exchange defines the minimal order/market-data contract the
// orchestrator drives, and a deterministic in-memory PaperExchange that
// satisfies it without talking to a real venue. Grounded on spec.md §6's
// Exchange Adapter and on paid_trading_bot/execution/paper_trading.py's
// PaperTradingBroker for the paper-fill idiom.
package exchange

import (
	"context"
	"time"

	"tradecore/internal/ohlcv"
)

type OrderType string

const (
	OrderMarket        OrderType = "market"
	OrderLimit         OrderType = "limit"
	OrderStopLossLimit OrderType = "stop_loss_limit"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type OrderStatus string

const (
	StatusOpen     OrderStatus = "open"
	StatusClosed   OrderStatus = "closed"
	StatusCanceled OrderStatus = "canceled"
	StatusRejected OrderStatus = "rejected"
)

// OrderParams carries the optional fields an order may need: a limit or
// stop price, and a bag of venue-specific extras.
type OrderParams struct {
	Price  float64
	Params map[string]any
}

// OrderResult is what every create_order call returns, matching spec.md
// §6 exactly.
type OrderResult struct {
	ID           string
	AveragePrice float64
	Status       OrderStatus
	FilledAmount float64
}

// AssetBalance is one entry of fetch_balance's asset → balance map.
type AssetBalance struct {
	Free  float64
	Used  float64
	Total float64
}

// Ticker is the minimal fetch_ticker response.
type Ticker struct {
	Last float64
}

// Adapter is the narrow contract the orchestrator consumes. A real
// venue implementation lives outside this module; PaperExchange is the
// deterministic stand-in used for paper trading and tests.
type Adapter interface {
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]ohlcv.Candle, error)
	FetchBalance(ctx context.Context) (map[string]AssetBalance, error)
	CreateOrder(ctx context.Context, symbol string, orderType OrderType, side Side, amount float64, params OrderParams) (OrderResult, error)
	CancelOrder(ctx context.Context, id, symbol string) (bool, error)
	FetchTicker(ctx context.Context, symbol string) (Ticker, error)
}

// Fill is one paper-trading execution record, kept for audit/testing
// purposes the way PaperTradingBroker.fills does.
type Fill struct {
	OrderID   string
	Symbol    string
	Side      Side
	Amount    float64
	Price     float64
	Fee       float64
	Timestamp time.Time
}
