package memory

import (
	"context"
	"sync"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
)

type Store struct {
	mu        sync.Mutex
	ships     map[string]fleet.Ship
	execution map[string]ports.SailExecutionRecord
	logs      []fleet.LogEntry
}

func NewStore() *Store {
	return &Store{
		ships:     make(map[string]fleet.Ship),
		execution: make(map[string]ports.SailExecutionRecord),
	}
}

func execKey(userID, key string) string {
	return userID + "::" + key
}

type txKey struct{}

// lock takes the store mutex unless ctx already runs inside RunInTx, which
// holds it for the whole transaction.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) SeedShip(ship fleet.Ship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ships[ship.ID] = ship.Clone()
}
