package world

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Terrain string

const (
	TerrainOcean     Terrain = "OCEAN"
	TerrainGrassland Terrain = "GRASSLAND"
	TerrainForest    Terrain = "FOREST"
	TerrainMountain  Terrain = "MOUNTAIN"
	TerrainDesert    Terrain = "DESERT"
	TerrainSwamp     Terrain = "SWAMP"
	TerrainTundra    Terrain = "TUNDRA"
)

func (t Terrain) Valid() bool {
	switch t {
	case TerrainOcean, TerrainGrassland, TerrainForest, TerrainMountain, TerrainDesert, TerrainSwamp, TerrainTundra:
		return true
	default:
		return false
	}
}

func (t Terrain) Sailable() bool {
	return t == TerrainOcean
}

// TileID is the composite "x:y" key of a map cell.
type TileID string

var ErrInvalidTileID = errors.New("invalid tile id")

func NewTileID(x, y int) TileID {
	return TileID(strconv.Itoa(x) + ":" + strconv.Itoa(y))
}

func ParseTileID(raw string) (TileID, error) {
	x, y, err := TileID(raw).Coords()
	if err != nil {
		return "", err
	}
	return NewTileID(x, y), nil
}

func (id TileID) Coords() (int, int, error) {
	parts := strings.Split(string(id), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTileID, string(id))
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTileID, string(id))
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTileID, string(id))
	}
	return x, y, nil
}

func (id TileID) String() string {
	return string(id)
}

type Tile struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Terrain Terrain `json:"terrain"`
}

func (t Tile) ID() TileID {
	return NewTileID(t.X, t.Y)
}

// Adjacent reports whether b is one of the eight neighbours of a.
func Adjacent(a, b TileID) bool {
	ax, ay, err := a.Coords()
	if err != nil {
		return false
	}
	bx, by, err := b.Coords()
	if err != nil {
		return false
	}
	dx, dy := abs(ax-bx), abs(ay-by)
	return dx <= 1 && dy <= 1 && dx+dy > 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
