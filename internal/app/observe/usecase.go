package observe

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/shared/shipview"
	"tradewinds/internal/domain/sail"
	"tradewinds/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid observe request")

const (
	defaultViewRadius = 2
	maxViewRadius     = 8
)

type UseCase struct {
	Ships  ports.ShipRepository
	World  ports.WorldProvider
	Radius int
	Now    func() time.Time
}

// Execute is the world as the caller sees it at now: every NPC, every
// city's spot prices, the caller's ships and the tiles their lookouts
// reveal that the caller did not already know.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Radius < 0 {
		return Response{}, ErrInvalidRequest
	}
	radius := req.Radius
	if radius == 0 {
		radius = u.Radius
	}
	if radius <= 0 {
		radius = defaultViewRadius
	}
	if radius > maxViewRadius {
		radius = maxViewRadius
	}

	known := make(sail.Set, len(req.Known))
	for i, raw := range req.Known {
		id, err := world.ParseTileID(raw)
		if err != nil {
			return Response{}, &sail.MalformedError{Field: "known[" + strconv.Itoa(i) + "]", Err: err}
		}
		known[id] = struct{}{}
	}

	snapshot, err := u.World.World(ctx)
	if err != nil {
		return Response{}, err
	}
	ships, err := u.Ships.ListByOwner(ctx, req.UserID)
	if err != nil {
		return Response{}, err
	}

	now := time.Now()
	if u.Now != nil {
		now = u.Now()
	}

	out := Response{
		Now:      now.UnixMilli(),
		NPCs:     make([]ObservedNPC, 0, len(snapshot.NPCs)),
		Cities:   make([]ObservedCity, 0, len(snapshot.Cities)),
		Ships:    make([]ObservedShip, 0, len(ships)),
		NewTiles: []world.Tile{},
	}
	for _, npc := range snapshot.NPCs {
		tile, err := sail.NPCTile(npc, now)
		if err != nil {
			return Response{}, err
		}
		out.NPCs = append(out.NPCs, ObservedNPC{ID: npc.ID, Name: npc.Name, Tile: tile})
	}
	for _, c := range snapshot.Cities {
		prices := make(map[string]int, len(c.Prices))
		for _, p := range c.Prices {
			prices[p.Type] = sail.Price(p.Amplitude, p.Midline, c.SeedFor(p), now)
		}
		out.Cities = append(out.Cities, ObservedCity{ID: c.ID, Name: c.Name, Tile: c.Tile, Prices: prices})
	}
	sort.Slice(out.Cities, func(i, j int) bool { return out.Cities[i].ID < out.Cities[j].ID })

	for _, ship := range ships {
		pos, err := shipview.Locate(ship, snapshot, now)
		if err != nil {
			return Response{}, err
		}
		out.Ships = append(out.Ships, ObservedShip{Ship: ship, Position: pos})

		fresh, err := sail.NewKnownTiles(pos.Tile, radius, snapshot.Map, known)
		if err != nil {
			return Response{}, err
		}
		for _, id := range fresh {
			known[id] = struct{}{}
			if t, ok := snapshot.Map.Tile(id); ok {
				out.NewTiles = append(out.NewTiles, t)
			}
		}
	}
	sort.Slice(out.NewTiles, func(i, j int) bool {
		if out.NewTiles[i].Y != out.NewTiles[j].Y {
			return out.NewTiles[i].Y < out.NewTiles[j].Y
		}
		return out.NewTiles[i].X < out.NewTiles[j].X
	})
	return out, nil
}
