package memory

import (
	"context"
	"sort"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
)

type ShipRepo struct {
	store *Store
}

func NewShipRepo(store *Store) ShipRepo {
	return ShipRepo{store: store}
}

func (r ShipRepo) GetByID(ctx context.Context, shipID string) (fleet.Ship, error) {
	defer r.store.lock(ctx)()
	ship, ok := r.store.ships[shipID]
	if !ok {
		return fleet.Ship{}, ports.ErrNotFound
	}
	return ship.Clone(), nil
}

// GetForUpdate is GetByID; the transaction already holds the store.
func (r ShipRepo) GetForUpdate(ctx context.Context, shipID string) (fleet.Ship, error) {
	return r.GetByID(ctx, shipID)
}

func (r ShipRepo) ListByOwner(ctx context.Context, ownerID string) ([]fleet.Ship, error) {
	defer r.store.lock(ctx)()
	out := make([]fleet.Ship, 0)
	for _, s := range r.store.ships {
		if s.OwnerID == ownerID {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r ShipRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	defer r.store.lock(ctx)()
	n := 0
	for _, s := range r.store.ships {
		if s.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r ShipRepo) Create(ctx context.Context, ship fleet.Ship) error {
	defer r.store.lock(ctx)()
	if _, exists := r.store.ships[ship.ID]; exists {
		return ports.ErrConflict
	}
	r.store.ships[ship.ID] = ship.Clone()
	return nil
}

func (r ShipRepo) SaveWithVersion(ctx context.Context, ship fleet.Ship, expectedVersion int64) error {
	defer r.store.lock(ctx)()
	current, ok := r.store.ships[ship.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.ships[ship.ID] = ship.Clone()
	return nil
}
