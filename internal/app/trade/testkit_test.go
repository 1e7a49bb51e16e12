package trade

import (
	"context"
	"testing"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubShipRepo struct {
	byID      map[string]fleet.Ship
	saveCalls int
}

func (r *stubShipRepo) GetByID(_ context.Context, shipID string) (fleet.Ship, error) {
	s, ok := r.byID[shipID]
	if !ok {
		return fleet.Ship{}, ports.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *stubShipRepo) GetForUpdate(ctx context.Context, shipID string) (fleet.Ship, error) {
	return r.GetByID(ctx, shipID)
}

func (r *stubShipRepo) ListByOwner(context.Context, string) ([]fleet.Ship, error) { return nil, nil }

func (r *stubShipRepo) CountByOwner(context.Context, string) (int, error) { return len(r.byID), nil }

func (r *stubShipRepo) Create(_ context.Context, ship fleet.Ship) error {
	r.byID[ship.ID] = ship.Clone()
	return nil
}

func (r *stubShipRepo) SaveWithVersion(_ context.Context, ship fleet.Ship, expectedVersion int64) error {
	r.saveCalls++
	if r.byID[ship.ID].Version != expectedVersion {
		return ports.ErrConflict
	}
	r.byID[ship.ID] = ship.Clone()
	return nil
}

type stubLogRepo struct {
	entries []fleet.LogEntry
}

func (r *stubLogRepo) Append(_ context.Context, entries []fleet.LogEntry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *stubLogRepo) ListByUser(context.Context, ports.LogQuery) ([]fleet.LogEntry, error) {
	return r.entries, nil
}

type stubWorld struct {
	snapshot *world.Snapshot
}

func (w stubWorld) World(context.Context) (*world.Snapshot, error) {
	return w.snapshot, nil
}

type stubMetrics struct {
	successCalls  int
	conflictCalls int
	failureCalls  int
	lastResult    ports.ResultCode
}

func (m *stubMetrics) RecordSuccess(resultCode ports.ResultCode) {
	m.successCalls++
	m.lastResult = resultCode
}

func (m *stubMetrics) RecordConflict() { m.conflictCalls++ }

func (m *stubMetrics) RecordFailure() { m.failureCalls++ }

var tradeNow = time.UnixMilli(5_000_000)

func tradeWorld(t *testing.T) *world.Snapshot {
	t.Helper()
	m, err := world.NewMap([]world.Tile{
		{X: 0, Y: 0, Terrain: world.TerrainGrassland},
		{X: 1, Y: 0, Terrain: world.TerrainOcean},
		{X: 2, Y: 0, Terrain: world.TerrainGrassland},
	})
	if err != nil {
		t.Fatalf("NewMap error: %v", err)
	}
	s, err := world.NewSnapshot(m, []world.City{
		// Zero amplitude pins the spot price to the midline.
		{ID: "port-royal", Name: "Port Royal", Tile: "0:0", Prices: []world.PriceCurve{{Type: "rum", Amplitude: 0, Midline: 10}}},
		{ID: "tortuga", Name: "Tortuga", Tile: "2:0"},
	}, nil)
	if err != nil {
		t.Fatalf("NewSnapshot error: %v", err)
	}
	return s
}

func dockedShip(id, owner string, gold int) fleet.Ship {
	return fleet.Ship{
		ID: id, OwnerID: owner, Name: "Ship " + id, CityID: "port-royal",
		Speed: 1.0 / 1000, Capacity: 10, Version: 1,
		Cargo: fleet.Cargo{Gold: gold, Goods: map[string]int{"rum": 0, "sugar": 0}},
	}
}

type fixture struct {
	uc      UseCase
	ships   *stubShipRepo
	logs    *stubLogRepo
	metrics *stubMetrics
}

func newFixture(t *testing.T, ships ...fleet.Ship) fixture {
	t.Helper()
	f := fixture{
		ships:   &stubShipRepo{byID: map[string]fleet.Ship{}},
		logs:    &stubLogRepo{},
		metrics: &stubMetrics{},
	}
	for _, s := range ships {
		f.ships.byID[s.ID] = s
	}
	f.uc = UseCase{
		TxManager: stubTxManager{},
		Ships:     f.ships,
		Logs:      f.logs,
		World:     stubWorld{snapshot: tradeWorld(t)},
		Metrics:   f.metrics,
		Now:       func() time.Time { return tradeNow },
	}
	return f
}
