package world

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidMap = errors.New("invalid map")

// Map is the fixed world grid. It is built once at world setup and never
// mutated afterwards.
type Map struct {
	tiles map[TileID]Tile
}

func NewMap(tiles []Tile) (*Map, error) {
	m := &Map{tiles: make(map[TileID]Tile, len(tiles))}
	for _, t := range tiles {
		if !t.Terrain.Valid() {
			return nil, fmt.Errorf("%w: tile %s has terrain %q", ErrInvalidMap, t.ID(), t.Terrain)
		}
		id := t.ID()
		if _, dup := m.tiles[id]; dup {
			return nil, fmt.Errorf("%w: duplicate tile %s", ErrInvalidMap, id)
		}
		m.tiles[id] = t
	}
	return m, nil
}

func (m *Map) Tile(id TileID) (Tile, bool) {
	if m == nil {
		return Tile{}, false
	}
	t, ok := m.tiles[id]
	return t, ok
}

func (m *Map) Terrain(id TileID) (Terrain, bool) {
	t, ok := m.Tile(id)
	return t.Terrain, ok
}

func (m *Map) Has(id TileID) bool {
	_, ok := m.Tile(id)
	return ok
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tiles)
}

// Tiles returns every tile ordered by y, then x.
func (m *Map) Tiles() []Tile {
	if m == nil {
		return nil
	}
	out := make([]Tile, 0, len(m.tiles))
	for _, t := range m.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Contains satisfies the valid-tile set used by visibility scans.
func (m *Map) Contains(id TileID) bool {
	return m.Has(id)
}
