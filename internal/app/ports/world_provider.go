package ports

import (
	"context"

	"tradewinds/internal/domain/world"
)

// WorldProvider serves the immutable world. Callers must not mutate the
// returned snapshot.
type WorldProvider interface {
	World(ctx context.Context) (*world.Snapshot, error)
}
