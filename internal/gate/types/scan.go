package types

import "time"

// ScanRequest is one card tap as handed to the decision engine. Group is
// supplied by the caller on every scan; the engine never caches a
// selection. A zero ScannedAt means "now".
type ScanRequest struct {
	CardUID   string
	Group     string
	ScannedAt time.Time
}

// Decision is the outcome of a single scan. It is built fresh per scan,
// handed to the presenter and the entry log, and then discarded.
type Decision struct {
	Allowed  bool
	Headline string // short status line, e.g. "Access granted"
	Detail   string // multi-line human-readable explanation
	Reason   string // machine reason persisted to the entry log

	CardUID   string
	DecidedAt time.Time
}
