package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a couple of sample cards so a fresh dev kiosk has
// something to scan. Existing rows with the same UID are left untouched —
// a CSV import is the authoritative path and must not be clobbered.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	seed := []struct {
		uid, holder, cardType, groups, notes string
	}{
		{"04AABBCCDD2280", "Dev Member", "Dauerkarte", "*", "seeded dev card"},
		{"04DDEEFF112280", "Dev Guest", "Tageskarte", "damen", ""},
	}

	for _, c := range seed {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO cards(
  uid, holder_name, card_type, valid_from, valid_until, groups, notes,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, NULL, NULL, ?, ?, ?, ?);`,
			c.uid, c.holder, c.cardType, c.groups, c.notes, now, now,
		); err != nil {
			return fmt.Errorf("seed card %s: %w", c.uid, err)
		}
	}

	return nil
}
