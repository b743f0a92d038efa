package memory

import (
	"context"
	"strings"
)

// Open picks a backend from the URL scheme. postgres:// and postgresql://
// go to Postgres; sqlite://path, a bare file path or :memory: go to SQLite;
// an empty URL falls back to the in-memory store.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case databaseURL == "":
		return NewInMemoryStore(), nil
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgresStore(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLiteStore(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	default:
		return NewSQLiteStore(ctx, databaseURL)
	}
}
