package runtime

import (
	"context"
	"errors"
	"testing"

	"tradewinds/internal/domain/world"
)

type fakeStore struct {
	snap  *world.Snapshot
	loads int
	saves int
}

func (s *fakeStore) Load() (*world.Snapshot, bool, error) {
	s.loads++
	return s.snap, s.snap != nil, nil
}

func (s *fakeStore) Save(snap *world.Snapshot) error {
	s.saves++
	s.snap = snap
	return nil
}

func tinyWorld(t *testing.T) *world.Snapshot {
	t.Helper()
	m, err := world.NewMap([]world.Tile{{X: 0, Y: 0, Terrain: world.TerrainOcean}, {X: 1, Y: 0, Terrain: world.TerrainGrassland}})
	if err != nil {
		t.Fatalf("NewMap error: %v", err)
	}
	snap, err := world.NewSnapshot(m, nil, nil)
	if err != nil {
		t.Fatalf("NewSnapshot error: %v", err)
	}
	return snap
}

func TestProvider_BuildsOnceAndCaches(t *testing.T) {
	builds := 0
	store := &fakeStore{}
	p := NewProvider(Config{
		Store: store,
		Build: func() (*world.Snapshot, error) {
			builds++
			return tinyWorld(t), nil
		},
	})

	first, err := p.World(context.Background())
	if err != nil {
		t.Fatalf("World error: %v", err)
	}
	second, err := p.World(context.Background())
	if err != nil {
		t.Fatalf("World error: %v", err)
	}
	if first != second {
		t.Fatalf("expected cached snapshot")
	}
	if builds != 1 || store.saves != 1 || store.loads != 1 {
		t.Fatalf("expected one build/save/load, got builds=%d saves=%d loads=%d", builds, store.saves, store.loads)
	}
}

func TestProvider_PrefersStoredWorld(t *testing.T) {
	stored := tinyWorld(t)
	p := NewProvider(Config{
		Store: &fakeStore{snap: stored},
		Build: func() (*world.Snapshot, error) {
			t.Fatalf("builder must not run when the store has a world")
			return nil, nil
		},
	})
	got, err := p.World(context.Background())
	if err != nil || got != stored {
		t.Fatalf("expected stored world, got %p err=%v", got, err)
	}
}

func TestProvider_RetriesFailedBuild(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	p := NewProvider(Config{Build: func() (*world.Snapshot, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return tinyWorld(t), nil
	}})
	if _, err := p.World(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}
	if _, err := p.World(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}
