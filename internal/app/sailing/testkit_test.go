package sailing

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
	"tradewinds/internal/domain/world"
)

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubShipRepo struct {
	byID      map[string]fleet.Ship
	saveCalls int
	saveErr   error
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

func (r *stubShipRepo) ListByOwner(_ context.Context, ownerID string) ([]fleet.Ship, error) {
	var out []fleet.Ship
	for _, s := range r.byID {
		if s.OwnerID == ownerID {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubShipRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	ships, err := r.ListByOwner(ctx, ownerID)
	return len(ships), err
}

func (r *stubShipRepo) Create(_ context.Context, ship fleet.Ship) error {
	if _, ok := r.byID[ship.ID]; ok {
		return ports.ErrConflict
	}
	r.byID[ship.ID] = ship.Clone()
	return nil
}

func (r *stubShipRepo) SaveWithVersion(_ context.Context, ship fleet.Ship, expectedVersion int64) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	current, ok := r.byID[ship.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.byID[ship.ID] = ship.Clone()
	return nil
}

type stubExecRepo struct {
	byKey map[string]ports.SailExecutionRecord
}

func (r *stubExecRepo) GetByIdempotencyKey(_ context.Context, userID, key string) (*ports.SailExecutionRecord, error) {
	rec, ok := r.byKey[userID+"|"+key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := rec
	return &copy, nil
}

func (r *stubExecRepo) SaveExecution(_ context.Context, execution ports.SailExecutionRecord) error {
	r.byKey[execution.UserID+"|"+execution.IdempotencyKey] = execution
	return nil
}

type stubLogRepo struct {
	entries []fleet.LogEntry
}

func (r *stubLogRepo) Append(_ context.Context, entries []fleet.LogEntry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *stubLogRepo) ListByUser(_ context.Context, _ ports.LogQuery) ([]fleet.LogEntry, error) {
	return r.entries, nil
}

type stubWorld struct {
	snapshot *world.Snapshot
}

func (w stubWorld) World(context.Context) (*world.Snapshot, error) {
	return w.snapshot, nil
}

type published struct {
	channel string
	msgType string
	payload any
}

type stubPublisher struct {
	messages []published
	err      error
}

func (p *stubPublisher) Publish(channel, msgType string, payload any) error {
	p.messages = append(p.messages, published{channel: channel, msgType: msgType, payload: payload})
	return p.err
}

type stubScheduler struct {
	calls  int
	events []sail.Event
}

func (s *stubScheduler) Schedule(_, _ string, events []sail.Event) {
	s.calls++
	s.events = append(s.events, events...)
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

// harbourWorld is a 5x3 strip with Port Royal at 0:0, Tortuga at 4:0 and a
// mountain at 2:0.
func harbourWorld(t *testing.T) *world.Snapshot {
	t.Helper()
	land := map[world.TileID]world.Terrain{
		"0:0": world.TerrainGrassland,
		"2:0": world.TerrainMountain,
		"4:0": world.TerrainGrassland,
		"4:2": world.TerrainGrassland,
	}
	var tiles []world.Tile
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			terrain := world.TerrainOcean
			if tt, ok := land[world.NewTileID(x, y)]; ok {
				terrain = tt
			}
			tiles = append(tiles, world.Tile{X: x, Y: y, Terrain: terrain})
		}
	}
	m, err := world.NewMap(tiles)
	if err != nil {
		t.Fatalf("NewMap error: %v", err)
	}
	s, err := world.NewSnapshot(m, []world.City{
		{ID: "port-royal", Name: "Port Royal", Tile: "0:0"},
		{ID: "tortuga", Name: "Tortuga", Tile: "4:0"},
	}, nil)
	if err != nil {
		t.Fatalf("NewSnapshot error: %v", err)
	}
	return s
}

type fixture struct {
	uc        UseCase
	ships     *stubShipRepo
	execs     *stubExecRepo
	logs      *stubLogRepo
	publisher *stubPublisher
	scheduler *stubScheduler
	metrics   *stubMetrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		ships: &stubShipRepo{byID: map[string]fleet.Ship{
			"ship-1": {ID: "ship-1", OwnerID: "user-1", Name: "Gull", CityID: "port-royal", Speed: 1.0 / 1000, Capacity: 10, Version: 1,
				Cargo: fleet.Cargo{Goods: map[string]int{}}},
		}},
		execs:     &stubExecRepo{byKey: map[string]ports.SailExecutionRecord{}},
		logs:      &stubLogRepo{},
		publisher: &stubPublisher{},
		scheduler: &stubScheduler{},
		metrics:   &stubMetrics{},
	}
	f.uc = UseCase{
		TxManager:  stubTxManager{},
		Ships:      f.ships,
		Executions: f.execs,
		Logs:       f.logs,
		World:      stubWorld{snapshot: harbourWorld(t)},
		Publisher:  f.publisher,
		Scheduler:  f.scheduler,
		Metrics:    f.metrics,
		Now:        func() time.Time { return sailNow },
	}
	return f
}

var errBoom = errors.New("boom")
