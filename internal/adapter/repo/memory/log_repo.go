package memory

import (
	"context"
	"sort"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
)

type LogRepo struct {
	store *Store
}

func NewLogRepo(store *Store) LogRepo {
	return LogRepo{store: store}
}

func (r LogRepo) Append(ctx context.Context, entries []fleet.LogEntry) error {
	defer r.store.lock(ctx)()
	r.store.logs = append(r.store.logs, entries...)
	return nil
}

func (r LogRepo) ListByUser(ctx context.Context, q ports.LogQuery) ([]fleet.LogEntry, error) {
	defer r.store.lock(ctx)()
	out := make([]fleet.LogEntry, 0)
	for _, e := range r.store.logs {
		if e.UserID != q.UserID {
			continue
		}
		if !q.From.IsZero() && e.CreatedAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && e.CreatedAt.After(q.To) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
