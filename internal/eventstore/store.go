package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves events.
type Store interface {
	// Append stores e. Its ID and timestamp are ignored; the store assigns
	// them.
	Append(ctx context.Context, e Event) error
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)
	// RecentBuildIDs returns up to limit build IDs, newest first.
	RecentBuildIDs(ctx context.Context, limit int) ([]string, error)
	Close() error
}
