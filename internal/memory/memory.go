// Package memory persists conversation turns so the relay can replay recent
// context into the reasoning engine. Backends: Postgres, SQLite and an
// in-memory store for tests.
package memory

import (
	"context"
	"time"
)

// Turn is one completed user interaction: the inbound message, the reply
// that was actually delivered, the detected language and the strategy that
// produced the reply.
type Turn struct {
	ID        string
	UserID    string
	Message   string
	Response  string
	Language  string
	Strategy  string
	CreatedAt time.Time
}

// Stats is an aggregate view over everything stored.
type Stats struct {
	TotalTurns  int64
	UniqueUsers int64
}

// Store is the persistence contract. Recent returns up to limit turns for a
// user ordered newest first; callers reverse when they need chronology.
type Store interface {
	AppendTurn(ctx context.Context, turn Turn) error
	Recent(ctx context.Context, userID string, limit int) ([]Turn, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
