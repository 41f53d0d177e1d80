// Package cache provides a Redis-backed read-through cache for OHLCV
// candles, adapted from the teacher's internal/cache/cache_service.go:
// the same degraded-mode circuit-latch pattern (operations fail soft
// once consecutive failures pass a threshold, and self-heal on a
// periodic ping) applied to candle data instead of per-tenant settings.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tradecore/internal/ohlcv"
)

const keyPrefix = "candles:%s:%s" // symbol, timeframe

// CandleCache wraps a Redis client with health tracking so callers can
// fall back to the repository layer when Redis is degraded instead of
// blocking on a dead connection.
type CandleCache struct {
	client *redis.Client
	ttl    time.Duration

	mu           sync.RWMutex
	healthy      bool
	failureCount int
	lastCheck    time.Time

	maxFailures   int
	checkInterval time.Duration
}

// Config is the subset of connection settings the cache needs.
type Config struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

// New connects to Redis and returns a cache in degraded mode if the
// initial ping fails, rather than erroring out — callers decide
// whether a cold cache is fatal.
func New(cfg Config, ttl time.Duration) *CandleCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	cc := &CandleCache{
		client:        client,
		ttl:           ttl,
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err == nil {
		cc.healthy = true
		cc.lastCheck = time.Now()
	}

	return cc
}

// IsHealthy reports whether the cache is currently serving requests.
func (cc *CandleCache) IsHealthy() bool {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.healthy
}

func (cc *CandleCache) recordFailure() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.failureCount++
	if cc.failureCount >= cc.maxFailures {
		cc.healthy = false
	}
}

func (cc *CandleCache) recordSuccess() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.healthy = true
	cc.failureCount = 0
	cc.lastCheck = time.Now()
}

func (cc *CandleCache) checkHealth(ctx context.Context) {
	cc.mu.RLock()
	shouldCheck := !cc.healthy && time.Since(cc.lastCheck) >= cc.checkInterval
	cc.mu.RUnlock()
	if !shouldCheck {
		return
	}

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cc.client.Ping(pingCtx).Err(); err == nil {
			cc.recordSuccess()
		}
	}()
}

func candleKey(symbol, timeframe string) string {
	return fmt.Sprintf(keyPrefix, symbol, timeframe)
}

// GetCandles returns the cached candle slice for (symbol, timeframe).
// A cache miss or a degraded cache both return (nil, false) — callers
// treat either as "go to the repository".
func (cc *CandleCache) GetCandles(ctx context.Context, symbol, timeframe string) ([]ohlcv.Candle, bool) {
	cc.checkHealth(ctx)
	if !cc.IsHealthy() {
		return nil, false
	}

	raw, err := cc.client.Get(ctx, candleKey(symbol, timeframe)).Result()
	if err != nil {
		if err != redis.Nil {
			cc.recordFailure()
		}
		return nil, false
	}
	cc.recordSuccess()

	var candles []ohlcv.Candle
	if err := json.Unmarshal([]byte(raw), &candles); err != nil {
		return nil, false
	}
	return candles, true
}

// SetCandles stores the candle slice for (symbol, timeframe) with the
// cache's configured TTL. Failures are recorded but not returned — the
// cache is a performance optimization, never a write path the caller
// must wait on.
func (cc *CandleCache) SetCandles(ctx context.Context, symbol, timeframe string, candles []ohlcv.Candle) {
	cc.checkHealth(ctx)
	if !cc.IsHealthy() {
		return
	}

	data, err := json.Marshal(candles)
	if err != nil {
		return
	}

	if err := cc.client.Set(ctx, candleKey(symbol, timeframe), data, cc.ttl).Err(); err != nil {
		cc.recordFailure()
		return
	}
	cc.recordSuccess()
}

// Close releases the underlying Redis connection pool.
func (cc *CandleCache) Close() error {
	if cc.client == nil {
		return nil
	}
	return cc.client.Close()
}
