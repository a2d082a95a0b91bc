package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/clubgate/clubgate/internal/gate/store"
)

// CardStore is an in-memory card registry for tests and dev experiments.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]store.CardRecord
}

func NewCardStore() *CardStore {
	return &CardStore{cards: make(map[string]store.CardRecord)}
}

func (s *CardStore) UpsertCards(_ context.Context, records []store.CardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		uid := strings.ToUpper(strings.TrimSpace(rec.UID))
		if uid == "" {
			continue
		}
		rec.UID = uid
		s.cards[uid] = rec
	}
	return nil
}

func (s *CardStore) FindCard(_ context.Context, uid string) (*store.CardRecord, error) {
	uid = strings.ToUpper(strings.TrimSpace(uid))
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cards[uid]
	if !ok {
		return nil, nil
	}
	out := rec
	out.Groups = append([]string(nil), rec.Groups...)
	return &out, nil
}
