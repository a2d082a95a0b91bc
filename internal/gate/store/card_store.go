package store

import "context"

// CardRecord is one authorization record in the registry. ValidFrom and
// ValidUntil are ISO dates (yyyy-mm-dd) kept verbatim as imported; empty
// means unbounded on that side. Malformed values are surfaced as rule
// violations at decision time rather than rejected here, so a bad row in
// the CSV can never make a card un-storable.
type CardRecord struct {
	UID        string // uppercase hex, unique key
	HolderName string
	CardType   string
	ValidFrom  string
	ValidUntil string
	Groups     []string // raw group names; "*" grants all groups
	Notes      string
}

// CardStore is the card registry. Upsert is by UID and replaces all other
// fields atomically; cards are never deleted by the decision path.
type CardStore interface {
	// UpsertCards inserts or replaces the given records by UID.
	UpsertCards(ctx context.Context, records []CardRecord) error

	// FindCard returns the record for uid, or nil if the card is unknown.
	FindCard(ctx context.Context, uid string) (*CardRecord, error)
}
