package fleet

import (
	"time"

	"tradewinds/internal/domain/world"
)

// Path is a committed route. It is never edited in place; sailing again
// replaces it.
type Path struct {
	Tiles     []world.TileID `json:"tiles"`
	CreatedAt time.Time      `json:"created_at"`
}

func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tiles)
}

func (p *Path) Last() world.TileID {
	if p.Len() == 0 {
		return ""
	}
	return p.Tiles[len(p.Tiles)-1]
}

type Cargo struct {
	Gold  int            `json:"gold"`
	Goods map[string]int `json:"goods"`
}

// Used is the hold space taken by goods. Gold does not count.
func (c Cargo) Used() int {
	total := 0
	for _, n := range c.Goods {
		total += n
	}
	return total
}

func (c Cargo) Clone() Cargo {
	out := Cargo{Gold: c.Gold, Goods: make(map[string]int, len(c.Goods))}
	for k, v := range c.Goods {
		out.Goods[k] = v
	}
	return out
}

type Class struct {
	Name     string  `json:"name" yaml:"name"`
	Speed    float64 `json:"speed" yaml:"speed"` // tiles per millisecond
	Capacity int     `json:"capacity" yaml:"capacity"`
}

type Ship struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	CityID    string    `json:"city_id"`
	Cargo     Cargo     `json:"cargo"`
	Capacity  int       `json:"capacity"`
	Speed     float64   `json:"speed"`
	Path      *Path     `json:"path,omitempty"`
	Sunk      bool      `json:"sunk"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Ship) Clone() Ship {
	out := s
	out.Cargo = s.Cargo.Clone()
	if s.Path != nil {
		p := Path{Tiles: append([]world.TileID(nil), s.Path.Tiles...), CreatedAt: s.Path.CreatedAt}
		out.Path = &p
	}
	return out
}

// LogEntry is the durable record of something that happened to a ship.
type LogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ShipID    string    `json:"ship_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
