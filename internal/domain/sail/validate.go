package sail

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"
)

type EventKind string

const (
	EventSink       EventKind = "SINK"
	EventLog        EventKind = "LOG"
	EventTileReveal EventKind = "TILE_REVEAL"
)

// Event is something a sail will cause at a future instant. Only the text
// of SINK and LOG events is persisted, as log entries.
type Event struct {
	Kind EventKind    `json:"kind"`
	At   time.Time    `json:"at"`
	Tile world.TileID `json:"tile"`
	Text string       `json:"text,omitempty"`
}

type ValidateInput struct {
	Path  []string
	Ship  fleet.Ship
	World *world.Snapshot
	Now   time.Time
}

// Outcome is the settled result of a sail. Sinking is an outcome, not an
// error.
type Outcome struct {
	FinalCityID string     `json:"final_city_id"`
	Path        fleet.Path `json:"path"`
	Sunk        bool       `json:"sunk"`
	Events      []Event    `json:"events"`
	ArrivesAt   time.Time  `json:"arrives_at"`
}

// Apply moves the ship onto the outcome's path and city.
func (o Outcome) Apply(ship *fleet.Ship) {
	p := fleet.Path{Tiles: append([]world.TileID(nil), o.Path.Tiles...), CreatedAt: o.Path.CreatedAt}
	ship.Path = &p
	ship.CityID = o.FinalCityID
	ship.Sunk = o.Sunk
}

// Validate walks a proposed path the way the ship would sail it, starting
// now. The first and last tiles are the origin and destination cities;
// every tile in between must be open ocean and free of NPC traffic while
// the ship is on it.
func Validate(in ValidateInput) (Outcome, error) {
	ship := in.Ship
	if in.World == nil || in.World.Map == nil {
		return Outcome{}, malformed("world", nil)
	}
	if ship.Speed <= 0 {
		return Outcome{}, malformed("ship.speed", ErrInvalidSpeed)
	}
	if ship.Sunk {
		return Outcome{}, ErrShipSunk
	}
	origin, ok := in.World.City(ship.CityID)
	if !ok {
		return Outcome{}, malformed("ship.city_id", ErrUnknownCity)
	}
	if ShipPosition(ship, origin.Tile, in.Now).InTransit {
		return Outcome{}, ErrShipInTransit
	}

	tiles, err := parsePath(in.Path, in.World.Map)
	if err != nil {
		return Outcome{}, err
	}
	if tiles[0] != origin.Tile {
		return Outcome{}, malformed("path[0]", ErrOriginMismatch)
	}

	arrival := func(i int) time.Time {
		return ArrivalTime(in.Now, i, ship.Speed)
	}
	sink := func(i int, at time.Time, events []Event, text string) Outcome {
		walked := fleet.Path{Tiles: append([]world.TileID(nil), tiles[:i+1]...), CreatedAt: in.Now}
		return Outcome{
			FinalCityID: ship.CityID,
			Path:        walked,
			Sunk:        true,
			Events:      append(events, Event{Kind: EventSink, At: at, Tile: tiles[i], Text: text}),
			ArrivesAt:   arrival(len(walked.Tiles)),
		}
	}

	n := len(tiles)
	events := make([]Event, 0, n+1)
	for i := 1; i < n-1; i++ {
		tile := tiles[i]
		at := arrival(i)
		terrain, _ := in.World.Map.Terrain(tile)
		if !terrain.Sailable() {
			return sink(i, at, events, fmt.Sprintf("%s ran aground on %s at %s", ship.Name, strings.ToLower(string(terrain)), tile)), nil
		}
		leave := arrival(i + 1)
		for _, npc := range in.World.NPCs {
			hit, err := HasCollision(npc, tile, at, leave)
			if err != nil {
				return Outcome{}, fmt.Errorf("npc %s: %w", npc.ID, err)
			}
			if hit {
				return sink(i, at, events, fmt.Sprintf("%s was rammed by %s at %s", ship.Name, npcName(npc), tile)), nil
			}
		}
		events = append(events, Event{Kind: EventTileReveal, At: at, Tile: tile})
	}

	final := tiles[n-1]
	at := arrival(n - 1)
	dest, ok := in.World.CityAt(final)
	if !ok {
		return sink(n-1, at, events, fmt.Sprintf("%s sank: invalid destination %s", ship.Name, final)), nil
	}
	events = append(events,
		Event{Kind: EventTileReveal, At: at, Tile: final},
		Event{Kind: EventLog, At: at, Tile: final, Text: fmt.Sprintf("%s sailed from %s to %s", ship.Name, origin.Name, dest.Name)},
	)
	return Outcome{
		FinalCityID: dest.ID,
		Path:        fleet.Path{Tiles: tiles, CreatedAt: in.Now},
		Events:      events,
		ArrivesAt:   arrival(n),
	}, nil
}

func parsePath(raw []string, m *world.Map) ([]world.TileID, error) {
	if len(raw) < 2 {
		return nil, malformed("path", ErrPathTooShort)
	}
	tiles := make([]world.TileID, 0, len(raw))
	for i, r := range raw {
		field := "path[" + strconv.Itoa(i) + "]"
		id, err := world.ParseTileID(r)
		if err != nil {
			return nil, malformed(field, err)
		}
		if !m.Has(id) {
			return nil, malformed(field, ErrUnknownTile)
		}
		if i > 0 && !world.Adjacent(tiles[i-1], id) {
			return nil, malformed(field, ErrNotAdjacent)
		}
		tiles = append(tiles, id)
	}
	return tiles, nil
}

func npcName(npc world.NPC) string {
	if npc.Name != "" {
		return npc.Name
	}
	return npc.ID
}
