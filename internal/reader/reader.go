// Package reader defines the card reader boundary. Implementations push
// scans and human-readable status text onto channels owned by the caller,
// which decouples reader concurrency from decision and rendering
// concurrency.
package reader

import (
	"context"
	"time"
)

// Scan is one card read.
type Scan struct {
	UID string // uppercase hex card identifier
	At  time.Time
}

// Reader polls a physical (or simulated) card reader until ctx is
// cancelled. Implementations must not close the channels — the caller owns
// them — and should emit a status line on startup so the kiosk can show
// reader health before the first scan.
type Reader interface {
	Run(ctx context.Context, scans chan<- Scan, status chan<- string) error
}
