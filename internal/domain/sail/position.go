package sail

import (
	"math"
	"time"

	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"
)

// TilesMoved is how many whole tiles an entity sailing at speed (tiles/ms)
// has crossed between createdAt and now.
func TilesMoved(createdAt, now time.Time, speed float64) int {
	return tilesMovedMs(float64(createdAt.UnixMilli()), float64(now.UnixMilli()), speed)
}

func tilesMovedMs(createdMs, nowMs, speed float64) int {
	return int(math.Floor((nowMs - createdMs) * speed))
}

// ArrivalTime is the earliest millisecond at which TilesMoved reaches index.
func ArrivalTime(createdAt time.Time, index int, speed float64) time.Time {
	created := createdAt.UnixMilli()
	if index <= 0 || speed <= 0 {
		return time.UnixMilli(created)
	}
	at := created + int64(math.Ceil(float64(index)/speed))
	for tilesMovedMs(float64(created), float64(at), speed) < index {
		at++
	}
	for at > created && tilesMovedMs(float64(created), float64(at-1), speed) >= index {
		at--
	}
	return time.UnixMilli(at)
}

// NPCTile is where an NPC is at now. NPC paths loop forever, so any time
// (even one before the path started) resolves to a tile.
func NPCTile(npc world.NPC, now time.Time) (world.TileID, error) {
	if len(npc.Path) == 0 {
		return "", malformed("npc.path", ErrPathTooShort)
	}
	return npcTileAtMs(npc, float64(now.UnixMilli())), nil
}

func npcTileAtMs(npc world.NPC, nowMs float64) world.TileID {
	n := len(npc.Path)
	k := tilesMovedMs(float64(npc.PathCreatedAt.UnixMilli()), nowMs, npc.Speed)
	return npc.Path[((k%n)+n)%n]
}

type Position struct {
	Tile      world.TileID `json:"tile"`
	Index     int          `json:"index"` // -1 when docked or arrived
	InTransit bool         `json:"in_transit"`
	ArrivesAt time.Time    `json:"arrives_at"`
}

// ShipPosition is where a ship is at now. cityTile is the tile of the
// ship's current city, which is where it sits once its path is exhausted.
// A sunk ship stays on the last tile of its (truncated) path.
func ShipPosition(ship fleet.Ship, cityTile world.TileID, now time.Time) Position {
	if ship.Path.Len() == 0 || ship.Speed <= 0 {
		return Position{Tile: cityTile, Index: -1}
	}
	n := ship.Path.Len()
	arrives := ArrivalTime(ship.Path.CreatedAt, n, ship.Speed)
	k := TilesMoved(ship.Path.CreatedAt, now, ship.Speed)
	if k >= n {
		if ship.Sunk {
			return Position{Tile: ship.Path.Last(), Index: -1, ArrivesAt: arrives}
		}
		return Position{Tile: cityTile, Index: -1, ArrivesAt: arrives}
	}
	if k < 0 {
		k = 0
	}
	return Position{Tile: ship.Path.Tiles[k], Index: k, InTransit: true, ArrivesAt: arrives}
}
