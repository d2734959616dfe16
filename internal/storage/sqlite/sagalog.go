package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jcmexdev/labeeb-storefront/internal/coordinator/sagalog"
)

var (
	_ sagalog.Repository = (*SagaLog)(nil)
	_ sagalog.Reader     = (*SagaLog)(nil)
)

// The saga log lives in its own database file: it is written while the order
// transaction holds the storefront database's only connection.
const sagaSchema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    -- The order id; one row per transition, so not unique.
    saga_id         TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    current_step    TEXT    NOT NULL DEFAULT '',
    -- Submission summary, written on STARTED only.
    payload         TEXT,
    error_messages  TEXT    NOT NULL DEFAULT '[]',
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

// SagaLog is the append-only saga transition log.
type SagaLog struct {
	db *sql.DB
}

func OpenSagaLog(path string) (*SagaLog, error) {
	db, err := open(path, sagaSchema)
	if err != nil {
		return nil, err
	}
	return &SagaLog{db: db}, nil
}

func (l *SagaLog) Close() error {
	return l.db.Close()
}

func (l *SagaLog) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// History returns every entry for sagaID, oldest first. An unknown saga
// yields an empty slice.
func (l *SagaLog) History(ctx context.Context, sagaID string) ([]sagalog.SagaLog, error) {
	const q = `
		SELECT saga_id, status, current_step, COALESCE(payload, ''), error_messages,
		       trace_id, span_id, updated_at
		FROM   saga_logs
		WHERE  saga_id = ?
		ORDER  BY updated_at, id`

	rows, err := l.db.QueryContext(ctx, q, sagaID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: saga history for %q: %w", sagaID, err)
	}
	defer rows.Close()

	entries := []sagalog.SagaLog{}
	for rows.Next() {
		e, err := scanSagaLog(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan saga log: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanSagaLog(r rowScanner) (*sagalog.SagaLog, error) {
	var (
		e         sagalog.SagaLog
		updatedAt string
	)
	if err := r.Scan(&e.SagaID, &e.Status, &e.CurrentStep, &e.Payload, &e.ErrorMessages,
		&e.TraceID, &e.SpanID, &updatedAt); err != nil {
		return nil, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt = t
	return &e, nil
}
