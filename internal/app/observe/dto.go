package observe

import (
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
	"tradewinds/internal/domain/world"
)

type Request struct {
	UserID string   `json:"-"`
	Known  []string `json:"known"`
	Radius int      `json:"radius"`
}

type Response struct {
	Now      int64          `json:"now"`
	NPCs     []ObservedNPC  `json:"npcs"`
	Cities   []ObservedCity `json:"cities"`
	Ships    []ObservedShip `json:"ships"`
	NewTiles []world.Tile   `json:"new_tiles"`
}

type ObservedNPC struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Tile world.TileID `json:"tile"`
}

type ObservedCity struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Tile   world.TileID   `json:"tile"`
	Prices map[string]int `json:"prices"`
}

type ObservedShip struct {
	Ship     fleet.Ship    `json:"ship"`
	Position sail.Position `json:"position"`
}
