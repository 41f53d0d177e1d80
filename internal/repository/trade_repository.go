package repository

import (
	"context"

	"tradecore/internal/journal"
)

// PostgresTradeRepository satisfies journal.TradeRepository, giving the
// in-memory/on-disk journal a durable, queryable copy of every closed
// trade. Grounded on repository_trade_lifecycle.go's insert idiom.
type PostgresTradeRepository struct {
	db *DB
}

func NewPostgresTradeRepository(db *DB) *PostgresTradeRepository {
	return &PostgresTradeRepository{db: db}
}

func (r *PostgresTradeRepository) Append(ctx context.Context, rec journal.TradeRecord) error {
	const query = `
		INSERT INTO trades (trade_id, symbol, side, entry_price, exit_price, amount,
			entry_time, exit_time, exit_reason, pnl_percent, pnl_amount, fees)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (trade_id) DO NOTHING
	`
	_, err := r.db.Pool.Exec(ctx, query,
		rec.TradeID, rec.Symbol, rec.Side, rec.EntryPrice, rec.ExitPrice, rec.Amount,
		rec.EntryTime, rec.ExitTime, rec.ExitReason, rec.PnLPercent, rec.PnLAmount, rec.Fees,
	)
	return err
}

// ByDateRange returns closed trades with an exit time in [from, to),
// used by reporting/backtesting callers outside the hot tick path.
func (r *PostgresTradeRepository) ByDateRange(ctx context.Context, fromUnix, toUnix int64) ([]journal.TradeRecord, error) {
	const query = `
		SELECT trade_id, symbol, side, entry_price, exit_price, amount,
		       entry_time, exit_time, exit_reason, pnl_percent, pnl_amount, fees
		FROM trades
		WHERE exit_time >= to_timestamp($1) AND exit_time < to_timestamp($2)
		ORDER BY exit_time ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, fromUnix, toUnix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.TradeRecord
	for rows.Next() {
		var rec journal.TradeRecord
		if err := rows.Scan(
			&rec.TradeID, &rec.Symbol, &rec.Side, &rec.EntryPrice, &rec.ExitPrice, &rec.Amount,
			&rec.EntryTime, &rec.ExitTime, &rec.ExitReason, &rec.PnLPercent, &rec.PnLAmount, &rec.Fees,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
