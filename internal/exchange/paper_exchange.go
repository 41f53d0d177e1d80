package exchange

import (
	"context"
	"fmt"
	"sync"

	"tradecore/internal/clock"
	"tradecore/internal/ohlcv"
	"tradecore/internal/xerrors"
)

// FeeRatePercent resolves the paper-trading fees Open Question: the
// original's PaperTradingBroker charges nothing, so the default stays
// zero; a nonzero rate can be configured for fee-sensitivity testing.
type PaperExchangeConfig struct {
	FeeRatePercent float64
}

// PaperExchange is a deterministic, in-memory Adapter. Orders fill
// immediately at the last price fed via SetPrice (for market orders) or
// at the requested limit price, mirroring PaperTradingBroker's
// synchronous "fill on submit" behavior rather than modeling a resting
// order book.
type PaperExchange struct {
	mu       sync.Mutex
	cfg      PaperExchangeConfig
	now      clock.Clock
	prices   map[string]float64
	candles  map[string][]ohlcv.Candle
	balances map[string]AssetBalance
	orderSeq int
	fills    []Fill
}

func NewPaperExchange(cfg PaperExchangeConfig, now clock.Clock, startingBalances map[string]AssetBalance) *PaperExchange {
	balances := make(map[string]AssetBalance, len(startingBalances))
	for asset, bal := range startingBalances {
		balances[asset] = bal
	}
	return &PaperExchange{
		cfg:      cfg,
		now:      now,
		prices:   make(map[string]float64),
		candles:  make(map[string][]ohlcv.Candle),
		balances: balances,
	}
}

// SetPrice seeds the last-traded price used for market-order fills and
// FetchTicker responses.
func (p *PaperExchange) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = price
}

// SeedCandles loads the candle series FetchOHLCV serves for symbol and
// timeframe, keyed together like the real exchange's per-timeframe feed.
func (p *PaperExchange) SeedCandles(symbol, timeframe string, candles []ohlcv.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.candles[seedKey(symbol, timeframe)] = candles
}

func seedKey(symbol, timeframe string) string {
	return symbol + ":" + timeframe
}

func (p *PaperExchange) FetchOHLCV(_ context.Context, symbol, timeframe string, limit int) ([]ohlcv.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candles := p.candles[seedKey(symbol, timeframe)]
	if limit > 0 && limit < len(candles) {
		return append([]ohlcv.Candle(nil), candles[len(candles)-limit:]...), nil
	}
	return append([]ohlcv.Candle(nil), candles...), nil
}

func (p *PaperExchange) FetchBalance(_ context.Context) (map[string]AssetBalance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]AssetBalance, len(p.balances))
	for asset, bal := range p.balances {
		out[asset] = bal
	}
	return out, nil
}

func (p *PaperExchange) CreateOrder(_ context.Context, symbol string, orderType OrderType, side Side, amount float64, params OrderParams) (OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount <= 0 {
		return OrderResult{}, xerrors.NewExecutionError("invalid order amount", "", fmt.Errorf("order amount must be positive, got %v", amount))
	}

	fillPrice, err := p.resolveFillPrice(symbol, orderType, params)
	if err != nil {
		return OrderResult{}, err
	}

	p.orderSeq++
	id := fmt.Sprintf("paper-%d", p.orderSeq)
	fee := fillPrice * amount * p.cfg.FeeRatePercent / 100

	p.fills = append(p.fills, Fill{
		OrderID:   id,
		Symbol:    symbol,
		Side:      side,
		Amount:    amount,
		Price:     fillPrice,
		Fee:       fee,
		Timestamp: p.now(),
	})

	return OrderResult{
		ID:           id,
		AveragePrice: fillPrice,
		Status:       StatusClosed,
		FilledAmount: amount,
	}, nil
}

func (p *PaperExchange) resolveFillPrice(symbol string, orderType OrderType, params OrderParams) (float64, error) {
	switch orderType {
	case OrderMarket:
		price, ok := p.prices[symbol]
		if !ok {
			return 0, xerrors.NewExecutionError("no price seeded", "", fmt.Errorf("no current price seeded for %s", symbol))
		}
		return price, nil
	case OrderLimit, OrderStopLossLimit:
		if params.Price <= 0 {
			return 0, xerrors.NewExecutionError("missing limit price", "", fmt.Errorf("%s order requires a price", orderType))
		}
		return params.Price, nil
	default:
		return 0, xerrors.NewExecutionError("unsupported order type", "", fmt.Errorf("unsupported order type %q", orderType))
	}
}

// CancelOrder always succeeds: paper orders fill synchronously on
// submit, so there is never anything left open to cancel.
func (p *PaperExchange) CancelOrder(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func (p *PaperExchange) FetchTicker(_ context.Context, symbol string) (Ticker, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	price, ok := p.prices[symbol]
	if !ok {
		return Ticker{}, xerrors.NewExecutionError("no price seeded", "", fmt.Errorf("no current price seeded for %s", symbol))
	}
	return Ticker{Last: price}, nil
}

// Fills returns every paper-traded fill, oldest first, for assertions in
// tests and audit trails.
func (p *PaperExchange) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}
