package sagalog

import "context"

// Repository persists saga log entries. Each call appends a row; the log is
// never updated in place.
type Repository interface {
	Save(ctx context.Context, entry *SagaLog) error
}

// Reader exposes the recorded history of a saga, oldest entry first.
type Reader interface {
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
}
