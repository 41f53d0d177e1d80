package repository

import (
	"context"

	"tradecore/internal/ohlcv"
)

// CandleRepository is the durable counterpart to the Redis candle
// cache: a slower, authoritative store that the orchestrator writes
// through on every fetch. Nothing in this module reads it back on a
// cache miss.
type CandleRepository interface {
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []ohlcv.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]ohlcv.Candle, error)
	GetLatest(ctx context.Context, symbol, timeframe string) (*ohlcv.Candle, error)
	DeleteOlderThan(ctx context.Context, symbol, timeframe string, cutoff int64) (int64, error)
}

// PostgresCandleRepository persists candles in the candles table,
// upserting on the (symbol, timeframe, ts) primary key so repeated
// fetches of the same window are idempotent.
type PostgresCandleRepository struct {
	db *DB
}

func NewPostgresCandleRepository(db *DB) *PostgresCandleRepository {
	return &PostgresCandleRepository{db: db}
}

func (r *PostgresCandleRepository) SaveCandles(ctx context.Context, symbol, timeframe string, candles []ohlcv.Candle) error {
	const query = `
		INSERT INTO candles (symbol, timeframe, ts, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timeframe, ts) DO UPDATE
		SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
		    close = EXCLUDED.close, volume = EXCLUDED.volume
	`
	for _, c := range candles {
		if _, err := r.db.Pool.Exec(ctx, query, symbol, timeframe, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresCandleRepository) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]ohlcv.Candle, error) {
	const query = `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY ts DESC
		LIMIT $3
	`
	rows, err := r.db.Pool.Query(ctx, query, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ohlcv.Candle
	for rows.Next() {
		var c ohlcv.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reverse(out)
	return out, nil
}

func (r *PostgresCandleRepository) GetLatest(ctx context.Context, symbol, timeframe string) (*ohlcv.Candle, error) {
	const query = `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY ts DESC
		LIMIT 1
	`
	var c ohlcv.Candle
	err := r.db.Pool.QueryRow(ctx, query, symbol, timeframe).Scan(
		&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCandleRepository) DeleteOlderThan(ctx context.Context, symbol, timeframe string, cutoff int64) (int64, error) {
	const query = `DELETE FROM candles WHERE symbol = $1 AND timeframe = $2 AND ts < to_timestamp($3)`
	tag, err := r.db.Pool.Exec(ctx, query, symbol, timeframe, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func reverse(c []ohlcv.Candle) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}
