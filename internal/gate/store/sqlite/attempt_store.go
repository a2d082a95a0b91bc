package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/clubgate/clubgate/internal/db"
	"github.com/clubgate/clubgate/internal/gate/store"
)

type AttemptStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttemptStore(db *sql.DB, writer *dbpkg.Worker) *AttemptStore {
	return &AttemptStore{db: db, writer: writer}
}

func (s *AttemptStore) Append(ctx context.Context, rec store.AttemptRecord) error {
	uid := strings.ToUpper(strings.TrimSpace(rec.CardUID))
	if uid == "" {
		return fmt.Errorf("Append: empty card uid")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	scannedMs := rec.Timestamp.UTC().UnixMilli()

	var allowed int
	if rec.Allowed {
		allowed = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO entries(uid, scanned_at_ms, allowed, reason)
VALUES (?, ?, ?, ?);
`, uid, scannedMs, allowed, rec.Reason); err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		return nil
	})
}

// MostRecent orders by scan time then rowid so same-millisecond inserts
// resolve by insertion order.
func (s *AttemptStore) MostRecent(ctx context.Context, uid string) (*store.AttemptRecord, error) {
	uid = strings.ToUpper(strings.TrimSpace(uid))
	if uid == "" {
		return nil, nil
	}

	var (
		rec       store.AttemptRecord
		scannedMs int64
		allowed   int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT uid, scanned_at_ms, allowed, reason
FROM entries
WHERE uid = ?
ORDER BY scanned_at_ms DESC, id DESC
LIMIT 1;
`, uid).Scan(&rec.CardUID, &scannedMs, &allowed, &rec.Reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("MostRecent query: %w", err)
	}

	rec.Timestamp = time.UnixMilli(scannedMs).UTC()
	rec.Allowed = allowed == 1
	return &rec, nil
}

// PruneOlderThan deletes entry rows scanned before the given cutoff.
// Returns the number of rows deleted.
//
// Uses the idx_entries_time index for an efficient range scan.
func (s *AttemptStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM entries
WHERE scanned_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
