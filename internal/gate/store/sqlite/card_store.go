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

type CardStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewCardStore(db *sql.DB, writer *dbpkg.Worker) *CardStore {
	return &CardStore{db: db, writer: writer}
}

// UpsertCards writes all records in one transaction. UIDs are normalized
// to trimmed uppercase; records with an empty UID are skipped (the
// importer reports those as row errors before we ever get here).
func (s *CardStore) UpsertCards(ctx context.Context, records []store.CardRecord) error {
	if len(records) == 0 {
		return nil
	}
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, rec := range records {
			uid := strings.ToUpper(strings.TrimSpace(rec.UID))
			if uid == "" {
				continue
			}

			var validFrom, validUntil any
			if strings.TrimSpace(rec.ValidFrom) != "" {
				validFrom = rec.ValidFrom
			}
			if strings.TrimSpace(rec.ValidUntil) != "" {
				validUntil = rec.ValidUntil
			}

			if _, err := tx.ExecContext(ctx, `
INSERT INTO cards(
  uid, holder_name, card_type, valid_from, valid_until, groups, notes,
  created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(uid) DO UPDATE SET
  holder_name   = excluded.holder_name,
  card_type     = excluded.card_type,
  valid_from    = excluded.valid_from,
  valid_until   = excluded.valid_until,
  groups        = excluded.groups,
  notes         = excluded.notes,
  updated_at_ms = excluded.updated_at_ms;
`,
				uid, rec.HolderName, rec.CardType, validFrom, validUntil,
				joinGroups(rec.Groups), rec.Notes, nowMs, nowMs,
			); err != nil {
				return fmt.Errorf("UpsertCards %s: %w", uid, err)
			}
		}
		return nil
	})
}

func (s *CardStore) FindCard(ctx context.Context, uid string) (*store.CardRecord, error) {
	uid = strings.ToUpper(strings.TrimSpace(uid))
	if uid == "" {
		return nil, nil
	}

	var (
		rec        store.CardRecord
		validFrom  sql.NullString
		validUntil sql.NullString
		groups     string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT uid, holder_name, card_type, valid_from, valid_until, groups, notes
FROM cards
WHERE uid = ?;
`, uid).Scan(
		&rec.UID, &rec.HolderName, &rec.CardType,
		&validFrom, &validUntil, &groups, &rec.Notes,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindCard query: %w", err)
	}

	rec.ValidFrom = validFrom.String
	rec.ValidUntil = validUntil.String
	rec.Groups = splitGroups(groups)
	return &rec, nil
}

func joinGroups(groups []string) string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	return strings.Join(out, ",")
}

func splitGroups(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
