package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/clubgate/clubgate/internal/gate/store"
)

// AttemptStore is an in-memory append-only entry log.
// It is intended for use in tests and dev environments.
type AttemptStore struct {
	mu       sync.Mutex
	attempts []store.AttemptRecord
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) Append(_ context.Context, rec store.AttemptRecord) error {
	rec.CardUID = strings.ToUpper(strings.TrimSpace(rec.CardUID))
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, rec)
	return nil
}

// MostRecent scans newest-first so same-timestamp rows resolve by
// insertion order, matching the sqlite store.
func (s *AttemptStore) MostRecent(_ context.Context, uid string) (*store.AttemptRecord, error) {
	uid = strings.ToUpper(strings.TrimSpace(uid))
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *store.AttemptRecord
	for i := len(s.attempts) - 1; i >= 0; i-- {
		rec := s.attempts[i]
		if rec.CardUID != uid {
			continue
		}
		if best == nil || rec.Timestamp.After(best.Timestamp) {
			cp := rec
			best = &cp
		}
	}
	return best, nil
}

func (s *AttemptStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.attempts[:0]
	var deleted int64
	for _, rec := range s.attempts {
		if rec.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.attempts = kept
	return deleted, nil
}

// Attempts returns a copy of all recorded attempts.  Test-only helper.
func (s *AttemptStore) Attempts() []store.AttemptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AttemptRecord, len(s.attempts))
	copy(out, s.attempts)
	return out
}
