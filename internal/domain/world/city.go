package world

import (
	"errors"
	"hash/fnv"
	"time"
)

var (
	ErrInvalidCity = errors.New("invalid city")
	ErrInvalidNPC  = errors.New("invalid npc")
)

// PriceCurve describes how a city prices one cargo type. The spot price is
// derived from it on demand and never stored.
type PriceCurve struct {
	Type      string `json:"type" yaml:"type"`
	Amplitude int    `json:"amplitude" yaml:"amplitude"`
	Midline   int    `json:"midline" yaml:"midline"`
	Seed      int    `json:"seed,omitempty" yaml:"seed"`
}

type City struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Tile   TileID       `json:"tile"`
	Prices []PriceCurve `json:"prices"`
}

func (c City) Validate() error {
	if c.ID == "" || c.Name == "" {
		return ErrInvalidCity
	}
	if _, _, err := c.Tile.Coords(); err != nil {
		return ErrInvalidCity
	}
	for _, p := range c.Prices {
		if p.Type == "" || p.Amplitude < 0 || p.Midline < 1 {
			return ErrInvalidCity
		}
	}
	return nil
}

func (c City) Curve(cargoType string) (PriceCurve, bool) {
	for _, p := range c.Prices {
		if p.Type == cargoType {
			return p, true
		}
	}
	return PriceCurve{}, false
}

// SeedFor returns the curve's seed, deriving a stable one from the city id
// when none was configured.
func (c City) SeedFor(p PriceCurve) int {
	if p.Seed != 0 {
		return p.Seed
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(c.ID + ":" + p.Type))
	return int(h.Sum32() & 0x7fffffff)
}

// NPC is a non-player ship looping a fixed path forever.
type NPC struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Speed         float64   `json:"speed"`
	Path          []TileID  `json:"path"`
	PathCreatedAt time.Time `json:"path_created_at"`
}

func (n NPC) Validate() error {
	if n.ID == "" || n.Speed <= 0 || len(n.Path) == 0 {
		return ErrInvalidNPC
	}
	for _, id := range n.Path {
		if _, _, err := id.Coords(); err != nil {
			return ErrInvalidNPC
		}
	}
	return nil
}
