package service

import (
	"time"

	"github.com/clubgate/clubgate/internal/gate/store"
)

// ReplayVerdict is the replay guard's override for an otherwise valid card.
type ReplayVerdict int

const (
	// ReplayNone: no prior relevant attempt; the standard allow path runs.
	ReplayNone ReplayVerdict = iota

	// ReplayGrace: re-allow. The same card tapped again within the grace
	// period — reader jitter or an impatient double tap, not suspicious.
	ReplayGrace

	// ReplayDuplicate: deny. The card was already used to enter recently;
	// a second use within the reuse window looks like a passed-back card.
	ReplayDuplicate
)

// ReplayPolicy holds the two windows of the replay guard.
type ReplayPolicy struct {
	GracePeriod time.Duration // default 1 minute
	ReuseWindow time.Duration // default 1 hour
}

func DefaultReplayPolicy() ReplayPolicy {
	return ReplayPolicy{
		GracePeriod: time.Minute,
		ReuseWindow: time.Hour,
	}
}

// Check inspects only the most recent attempt for the card. Denied prior
// attempts never restrict a retry. Both thresholds are exclusive on the
// restricted side: elapsed of exactly one grace period is already a
// duplicate, elapsed of exactly one reuse window is already a clean slate.
// Pure — no side effects.
func (p ReplayPolicy) Check(last *store.AttemptRecord, now time.Time) ReplayVerdict {
	if last == nil || !last.Allowed {
		return ReplayNone
	}

	elapsed := now.Sub(last.Timestamp)
	switch {
	case elapsed < p.GracePeriod:
		return ReplayGrace
	case elapsed < p.ReuseWindow:
		return ReplayDuplicate
	default:
		return ReplayNone
	}
}
