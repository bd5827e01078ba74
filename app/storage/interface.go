package storage

import (
	"context"
	"time"
)

type Interface interface {
	SaveMessage(ctx context.Context, record Record) error
	GetHistoryBySessionID(ctx context.Context, sessionID string) ([]Record, error)
	ClearSession(ctx context.Context, sessionID string) error
	Close() error
}

// Record is one persisted conversation message. IDs are per-session and
// monotonically increasing, so reading them back in id order reproduces the
// transcript.
type Record struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
