package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tradewinds/internal/domain/world"
)

// Store persists a built world so restarts and sibling processes reuse it.
type Store interface {
	Load() (*world.Snapshot, bool, error)
	Save(*world.Snapshot) error
}

type Config struct {
	// Build generates the world when the store has none.
	Build  func() (*world.Snapshot, error)
	Store  Store
	Logger *slog.Logger
}

// Provider builds the world on first use and serves the same snapshot
// afterwards. A failed build is retried on the next call.
type Provider struct {
	cfg Config

	mu   sync.Mutex
	snap *world.Snapshot
}

func NewProvider(cfg Config) *Provider {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) World(_ context.Context) (*world.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap != nil {
		return p.snap, nil
	}

	if p.cfg.Store != nil {
		snap, ok, err := p.cfg.Store.Load()
		if err != nil {
			return nil, fmt.Errorf("load world: %w", err)
		}
		if ok {
			p.cfg.Logger.Info("world loaded from store", "tiles", snap.Map.Len(), "cities", len(snap.Cities))
			p.snap = snap
			return snap, nil
		}
	}

	if p.cfg.Build == nil {
		return nil, errors.New("world provider has no builder")
	}
	snap, err := p.cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	if p.cfg.Store != nil {
		if err := p.cfg.Store.Save(snap); err != nil {
			return nil, fmt.Errorf("save world: %w", err)
		}
	}
	p.cfg.Logger.Info("world generated", "tiles", snap.Map.Len(), "cities", len(snap.Cities), "npcs", len(snap.NPCs))
	p.snap = snap
	return snap, nil
}
