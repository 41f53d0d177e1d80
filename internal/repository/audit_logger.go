package repository

import (
	"context"
	"encoding/json"
)

// AuditLogger records a durable trail of significant system events,
// independent of the structured application log, so a human can
// reconstruct "what did the bot decide and why" after the fact.
type AuditLogger interface {
	Log(ctx context.Context, component, eventType, message string, payload map[string]any) error
}

// PostgresAuditLogger writes each entry as one audit_log row, the
// payload serialized to JSONB.
type PostgresAuditLogger struct {
	db *DB
}

func NewPostgresAuditLogger(db *DB) *PostgresAuditLogger {
	return &PostgresAuditLogger{db: db}
}

func (a *PostgresAuditLogger) Log(ctx context.Context, component, eventType, message string, payload map[string]any) error {
	var raw []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = encoded
	}

	const query = `
		INSERT INTO audit_log (component, event_type, message, payload)
		VALUES ($1, $2, $3, $4)
	`
	_, err := a.db.Pool.Exec(ctx, query, component, eventType, message, raw)
	return err
}
