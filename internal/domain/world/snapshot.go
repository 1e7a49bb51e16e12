package world

import "fmt"

// Snapshot is the read-only world a simulation call runs against: the map,
// its cities and the NPC fleet.
type Snapshot struct {
	Map        *Map
	Cities     map[string]City
	CityByTile map[TileID]string
	NPCs       []NPC
}

func NewSnapshot(m *Map, cities []City, npcs []NPC) (*Snapshot, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil map", ErrInvalidMap)
	}
	s := &Snapshot{
		Map:        m,
		Cities:     make(map[string]City, len(cities)),
		CityByTile: make(map[TileID]string, len(cities)),
		NPCs:       make([]NPC, 0, len(npcs)),
	}
	for _, c := range cities {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("city %q: %w", c.ID, err)
		}
		if !m.Has(c.Tile) {
			return nil, fmt.Errorf("city %q: %w: tile %s not on map", c.ID, ErrInvalidCity, c.Tile)
		}
		if _, dup := s.Cities[c.ID]; dup {
			return nil, fmt.Errorf("city %q: %w: duplicate id", c.ID, ErrInvalidCity)
		}
		if other, dup := s.CityByTile[c.Tile]; dup {
			return nil, fmt.Errorf("city %q: %w: tile %s already holds %q", c.ID, ErrInvalidCity, c.Tile, other)
		}
		s.Cities[c.ID] = c
		s.CityByTile[c.Tile] = c.ID
	}
	for _, n := range npcs {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("npc %q: %w", n.ID, err)
		}
		s.NPCs = append(s.NPCs, n)
	}
	return s, nil
}

func (s *Snapshot) City(id string) (City, bool) {
	if s == nil {
		return City{}, false
	}
	c, ok := s.Cities[id]
	return c, ok
}

func (s *Snapshot) CityAt(tile TileID) (City, bool) {
	if s == nil {
		return City{}, false
	}
	id, ok := s.CityByTile[tile]
	if !ok {
		return City{}, false
	}
	return s.City(id)
}
