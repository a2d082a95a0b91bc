package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/clubgate/clubgate/internal/gate/store"
)

const dateLayout = "2006-01-02"

// Wildcard is the group sentinel that grants access for every group. It is
// a convention checked before the membership test, not a reserved character
// of the normalizer.
const Wildcard = "*"

// EvaluateCard applies the static card rules and returns every violation,
// not just the first. An empty result means the card passes; the replay
// guard runs afterwards. Pure — no side effects, no clock reads.
//
// Dates are compared at day granularity with inclusive bounds, so a card is
// usable on both its first and last valid day.
func EvaluateCard(card store.CardRecord, group string, now time.Time) []string {
	var violations []string

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if v := strings.TrimSpace(card.ValidFrom); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			violations = append(violations, "invalid start date")
		} else if today.Before(from) {
			violations = append(violations, fmt.Sprintf("not yet valid (starts %s)", v))
		}
	}

	if v := strings.TrimSpace(card.ValidUntil); v != "" {
		until, err := time.Parse(dateLayout, v)
		if err != nil {
			violations = append(violations, "invalid end date")
		} else if today.After(until) {
			violations = append(violations, fmt.Sprintf("expired (was valid until %s)", v))
		}
	}

	if !memberOf(card.Groups, group) {
		violations = append(violations, fmt.Sprintf("not authorized for %s", group))
	}

	return violations
}

func memberOf(groups []string, group string) bool {
	want := NormalizeGroup(group)
	for _, g := range groups {
		norm := NormalizeGroup(g)
		if norm == Wildcard || norm == want {
			return true
		}
	}
	return false
}

// NormalizeGroup canonicalizes a group ("team") name: trimmed, lowercased,
// spaces and periods stripped. "1. Herren" and "1herren" compare equal.
// Applied identically to imported card groups and to the requested group.
func NormalizeGroup(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	return strings.ToLower(strings.TrimSpace(s))
}
