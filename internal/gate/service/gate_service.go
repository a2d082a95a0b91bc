package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clubgate/clubgate/internal/gate/store"
	"github.com/clubgate/clubgate/internal/gate/types"
)

var (
	ErrInvalidCardUID = errors.New("card uid is required")
	ErrInvalidGroup   = errors.New("group is required")
)

// Machine reasons persisted to the entry log.
const (
	ReasonOK            = "OK"
	ReasonNotRegistered = "card not registered"
	ReasonGraceRepeat   = "repeat scan within grace period"
)

const (
	headlineGranted = "Access granted"
	headlineDenied  = "Access denied"
)

// GateService is the access decision engine: it resolves the card, runs the
// validity rules and the replay guard, formats the Decision, and appends
// exactly one entry-log row per processed scan.
type GateService struct {
	cards    store.CardStore
	attempts store.AttemptStore
	policy   ReplayPolicy

	// Decide serializes internally: the replay guard is only correct if
	// each scan sees the previous scan's log row fully committed.
	mu  sync.Mutex
	now func() time.Time
}

func NewGateService(cards store.CardStore, attempts store.AttemptStore, policy ReplayPolicy) *GateService {
	if policy.GracePeriod <= 0 {
		policy.GracePeriod = DefaultReplayPolicy().GracePeriod
	}
	if policy.ReuseWindow <= 0 {
		policy.ReuseWindow = DefaultReplayPolicy().ReuseWindow
	}
	return &GateService{
		cards:    cards,
		attempts: attempts,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Decide processes one scan. On success the returned Decision has been
// logged; a store failure (lookup or log append) is returned as an error
// and the scan must be treated as failed — nothing was logged, nothing
// should be rendered as a result.
func (s *GateService) Decide(ctx context.Context, req types.ScanRequest) (types.Decision, error) {
	uid := strings.ToUpper(strings.TrimSpace(req.CardUID))
	if uid == "" {
		return types.Decision{}, ErrInvalidCardUID
	}
	group := strings.TrimSpace(req.Group)
	if group == "" {
		return types.Decision{}, ErrInvalidGroup
	}

	now := req.ScannedAt
	if now.IsZero() {
		now = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := s.cards.FindCard(ctx, uid)
	if err != nil {
		return types.Decision{}, fmt.Errorf("find card %s: %w", uid, err)
	}

	if card == nil {
		d := types.Decision{
			Allowed:  false,
			Headline: headlineDenied,
			Detail:   fmt.Sprintf("Unknown card (%s)\nReason: %s", uid, ReasonNotRegistered),
			Reason:   ReasonNotRegistered,

			CardUID:   uid,
			DecidedAt: now,
		}
		return s.commit(ctx, d)
	}

	if violations := EvaluateCard(*card, group, now); len(violations) > 0 {
		d := types.Decision{
			Allowed:  false,
			Headline: headlineDenied,
			Detail:   cardLine(card) + "\n" + strings.Join(violations, "\n") + noteSuffix(card),
			Reason:   strings.Join(violations, "; "),

			CardUID:   uid,
			DecidedAt: now,
		}
		return s.commit(ctx, d)
	}

	last, err := s.attempts.MostRecent(ctx, uid)
	if err != nil {
		return types.Decision{}, fmt.Errorf("last attempt %s: %w", uid, err)
	}

	switch s.policy.Check(last, now) {
	case ReplayGrace:
		d := grantedDecision(card, uid, now)
		d.Reason = ReasonGraceRepeat
		return s.commit(ctx, d)

	case ReplayDuplicate:
		minutes := int(now.Sub(last.Timestamp) / time.Minute)
		d := types.Decision{
			Allowed:  false,
			Headline: headlineDenied,
			Detail: cardLine(card) +
				fmt.Sprintf("\nCard was already used %d minutes ago", minutes) +
				noteSuffix(card),
			Reason: fmt.Sprintf("already used %d minutes ago", minutes),

			CardUID:   uid,
			DecidedAt: now,
		}
		return s.commit(ctx, d)
	}

	return s.commit(ctx, grantedDecision(card, uid, now))
}

// commit appends the entry-log row for a fully computed decision. A failed
// append invalidates the decision: the caller gets the error and no
// Decision, so a scan can never be rendered as decided without its audit
// row persisted.
func (s *GateService) commit(ctx context.Context, d types.Decision) (types.Decision, error) {
	err := s.attempts.Append(ctx, store.AttemptRecord{
		CardUID:   d.CardUID,
		Timestamp: d.DecidedAt,
		Allowed:   d.Allowed,
		Reason:    d.Reason,
	})
	if err != nil {
		return types.Decision{}, fmt.Errorf("append attempt %s: %w", d.CardUID, err)
	}
	return d, nil
}

func grantedDecision(card *store.CardRecord, uid string, now time.Time) types.Decision {
	until := strings.TrimSpace(card.ValidUntil)
	if until == "" {
		until = "unbounded"
	}
	return types.Decision{
		Allowed:  true,
		Headline: headlineGranted,
		Detail:   cardLine(card) + "\nValid until: " + until + noteSuffix(card),
		Reason:   ReasonOK,

		CardUID:   uid,
		DecidedAt: now,
	}
}

func cardLine(card *store.CardRecord) string {
	cardType := strings.TrimSpace(card.CardType)
	if cardType == "" {
		cardType = "-"
	}
	return fmt.Sprintf("%s (%s)", card.HolderName, cardType)
}

func noteSuffix(card *store.CardRecord) string {
	if strings.TrimSpace(card.Notes) == "" {
		return ""
	}
	return "\nNote: " + card.Notes
}
