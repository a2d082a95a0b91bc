package store

import (
	"context"
	"time"
)

// AttemptRecord is one row of the append-only entry log.
type AttemptRecord struct {
	CardUID   string
	Timestamp time.Time
	Allowed   bool
	Reason    string
}

// AttemptStore persists access decisions as an append-only audit log.
// MostRecent must respect insertion order for same-timestamp rows so the
// replay guard always sees the latest committed attempt.
type AttemptStore interface {
	Append(ctx context.Context, rec AttemptRecord) error

	// MostRecent returns the latest attempt for uid, or nil if there is none.
	MostRecent(ctx context.Context, uid string) (*AttemptRecord, error)

	// PruneOlderThan deletes attempts before cutoff and reports how many
	// rows were removed. Retention cleanup only; the decision engine never
	// calls this.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
