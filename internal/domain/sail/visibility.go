package sail

import "tradewinds/internal/domain/world"

// TileSet answers membership for a set of tiles. *world.Map satisfies it.
type TileSet interface {
	Contains(id world.TileID) bool
}

type Set map[world.TileID]struct{}

func NewSet(ids ...world.TileID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Contains(id world.TileID) bool {
	_, ok := s[id]
	return ok
}

// Diamond lists the tiles of valid within Manhattan distance radius of
// center, ordered by y then x.
func Diamond(center world.TileID, radius int, valid TileSet) ([]world.TileID, error) {
	if valid == nil || !valid.Contains(center) {
		return nil, malformed("center", ErrUnknownTile)
	}
	if radius < 0 {
		return nil, malformed("radius", nil)
	}
	cx, cy, err := center.Coords()
	if err != nil {
		return nil, malformed("center", err)
	}
	out := make([]world.TileID, 0, 2*radius*(radius+1)+1)
	for dy := -radius; dy <= radius; dy++ {
		span := radius - absInt(dy)
		for dx := -span; dx <= span; dx++ {
			id := world.NewTileID(cx+dx, cy+dy)
			if valid.Contains(id) {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// NewKnownTiles is Diamond minus the tiles the caller already knows.
func NewKnownTiles(center world.TileID, radius int, valid TileSet, known TileSet) ([]world.TileID, error) {
	all, err := Diamond(center, radius, valid)
	if err != nil {
		return nil, err
	}
	if known == nil {
		return all, nil
	}
	out := all[:0]
	for _, id := range all {
		if !known.Contains(id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
