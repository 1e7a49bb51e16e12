package status

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/shared/shipview"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid status request")

type UseCase struct {
	Ships ports.ShipRepository
	World ports.WorldProvider
	Now   func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.ShipID) == "" {
		return Response{}, ErrInvalidRequest
	}
	ship, err := u.Ships.GetByID(ctx, req.ShipID)
	if err != nil {
		return Response{}, err
	}
	if ship.OwnerID != req.UserID {
		return Response{}, fleet.ErrNotOwner
	}
	snapshot, err := u.World.World(ctx)
	if err != nil {
		return Response{}, err
	}
	return u.describe(ship, snapshot)
}

// List reports every ship the user owns.
func (u UseCase) List(ctx context.Context, userID string) (ListResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return ListResponse{}, ErrInvalidRequest
	}
	ships, err := u.Ships.ListByOwner(ctx, userID)
	if err != nil {
		return ListResponse{}, err
	}
	snapshot, err := u.World.World(ctx)
	if err != nil {
		return ListResponse{}, err
	}
	out := ListResponse{Ships: make([]Response, 0, len(ships))}
	for _, s := range ships {
		r, err := u.describe(s, snapshot)
		if err != nil {
			return ListResponse{}, err
		}
		out.Ships = append(out.Ships, r)
	}
	return out, nil
}

func (u UseCase) describe(ship fleet.Ship, snapshot *world.Snapshot) (Response, error) {
	now := time.Now()
	if u.Now != nil {
		now = u.Now()
	}
	pos, err := shipview.Locate(ship, snapshot, now)
	if err != nil {
		return Response{}, err
	}
	resp := Response{Ship: ship, Position: pos, InTransit: pos.InTransit}
	if !pos.ArrivesAt.IsZero() {
		resp.ArrivesAt = pos.ArrivesAt.UnixMilli()
	}
	return resp, nil
}
