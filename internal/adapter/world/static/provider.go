package static

import (
	"context"
	"errors"

	"tradewinds/internal/domain/world"
)

var ErrNoWorld = errors.New("no world loaded")

// Provider serves a fixed snapshot. Tests and tools use it directly.
type Provider struct {
	Snapshot *world.Snapshot
}

func (p Provider) World(_ context.Context) (*world.Snapshot, error) {
	if p.Snapshot == nil {
		return nil, ErrNoWorld
	}
	return p.Snapshot, nil
}
