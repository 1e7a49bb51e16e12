package memory

import (
	"context"

	"tradewinds/internal/app/ports"
)

type SailExecutionRepo struct {
	store *Store
}

func NewSailExecutionRepo(store *Store) SailExecutionRepo {
	return SailExecutionRepo{store: store}
}

func (r SailExecutionRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*ports.SailExecutionRecord, error) {
	defer r.store.lock(ctx)()
	rec, ok := r.store.execution[execKey(userID, key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := rec
	out.Ship = rec.Ship.Clone()
	return &out, nil
}

func (r SailExecutionRepo) SaveExecution(ctx context.Context, execution ports.SailExecutionRecord) error {
	defer r.store.lock(ctx)()
	k := execKey(execution.UserID, execution.IdempotencyKey)
	if _, exists := r.store.execution[k]; exists {
		return ports.ErrConflict
	}
	execution.Ship = execution.Ship.Clone()
	r.store.execution[k] = execution
	return nil
}
