// Package config loads the world definition from YAML and the server
// settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"
)

var ErrInvalidConfig = errors.New("invalid world config")

// World is the static game definition: map generation parameters, what can
// be traded, which ships can be built, and the fixed cities and NPC routes.
type World struct {
	Generation Generation    `yaml:"generation"`
	CargoTypes []string      `yaml:"cargo_types"`
	Classes    []fleet.Class `yaml:"ship_classes"`
	Rules      Rules         `yaml:"rules"`
	Cities     []City        `yaml:"cities"`
	NPCs       []NPC         `yaml:"npcs"`
}

type Generation struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Seed          int64   `yaml:"seed"`
	SeaLevel      float64 `yaml:"sea_level"`
	MountainLevel float64 `yaml:"mountain_level"`
}

type Rules struct {
	MaxShipsPerOwner int `yaml:"max_ships_per_owner"`
	StartingGold     int `yaml:"starting_gold"`
	ViewRadius       int `yaml:"view_radius"`
}

type City struct {
	ID     string             `yaml:"id"`
	Name   string             `yaml:"name"`
	Tile   string             `yaml:"tile"`
	Prices []world.PriceCurve `yaml:"prices"`
}

// NPC speeds are written as the time to cross one tile, which reads better
// in YAML than a tiles-per-millisecond fraction.
type NPC struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	TileEvery   time.Duration `yaml:"tile_every"`
	Path        []string      `yaml:"path"`
	StartedAtMs int64         `yaml:"started_at_ms"`
}

func LoadWorld(path string) (World, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return World{}, fmt.Errorf("read world config: %w", err)
	}
	return ParseWorld(raw)
}

func ParseWorld(raw []byte) (World, error) {
	var w World
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return World{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := w.Validate(); err != nil {
		return World{}, err
	}
	return w, nil
}

func (w World) Validate() error {
	if len(w.CargoTypes) == 0 {
		return fmt.Errorf("%w: no cargo types", ErrInvalidConfig)
	}
	cargo := make(map[string]bool, len(w.CargoTypes))
	for _, t := range w.CargoTypes {
		if strings.TrimSpace(t) == "" || cargo[t] {
			return fmt.Errorf("%w: bad cargo type %q", ErrInvalidConfig, t)
		}
		cargo[t] = true
	}
	if len(w.Classes) == 0 {
		return fmt.Errorf("%w: no ship classes", ErrInvalidConfig)
	}
	for _, c := range w.Classes {
		if c.Name == "" || c.Speed <= 0 || c.Capacity < 0 {
			return fmt.Errorf("%w: bad ship class %q", ErrInvalidConfig, c.Name)
		}
	}
	if w.Rules.StartingGold < 0 || w.Rules.MaxShipsPerOwner < 0 || w.Rules.ViewRadius < 0 {
		return fmt.Errorf("%w: negative rule", ErrInvalidConfig)
	}
	if len(w.Cities) == 0 {
		return fmt.Errorf("%w: no cities", ErrInvalidConfig)
	}
	for _, c := range w.Cities {
		for _, p := range c.Prices {
			if !cargo[p.Type] {
				return fmt.Errorf("%w: city %q prices unknown cargo %q", ErrInvalidConfig, c.ID, p.Type)
			}
		}
	}
	for _, n := range w.NPCs {
		if n.TileEvery <= 0 {
			return fmt.Errorf("%w: npc %q needs a positive tile_every", ErrInvalidConfig, n.ID)
		}
	}
	return nil
}

// ClassMap indexes ship classes by name.
func (w World) ClassMap() map[string]fleet.Class {
	out := make(map[string]fleet.Class, len(w.Classes))
	for _, c := range w.Classes {
		out[c.Name] = c
	}
	return out
}

// GenConfig is the noise configuration with every city pinned to land and
// every NPC lane pinned to open water.
func (w World) GenConfig() (world.GenConfig, error) {
	cfg := world.GenConfig{
		Width:         w.Generation.Width,
		Height:        w.Generation.Height,
		Seed:          w.Generation.Seed,
		SeaLevel:      w.Generation.SeaLevel,
		MountainLevel: w.Generation.MountainLevel,
		Overrides:     map[world.TileID]world.Terrain{},
	}
	for _, n := range w.NPCs {
		for _, raw := range n.Path {
			id, err := world.ParseTileID(raw)
			if err != nil {
				return world.GenConfig{}, fmt.Errorf("npc %q: %w", n.ID, err)
			}
			cfg.Overrides[id] = world.TerrainOcean
		}
	}
	for _, c := range w.Cities {
		id, err := world.ParseTileID(c.Tile)
		if err != nil {
			return world.GenConfig{}, fmt.Errorf("city %q: %w", c.ID, err)
		}
		cfg.Overrides[id] = world.TerrainGrassland
	}
	return cfg, nil
}

// CitiesAndNPCs converts the configured cities and routes to domain values.
func (w World) CitiesAndNPCs() ([]world.City, []world.NPC, error) {
	cities := make([]world.City, 0, len(w.Cities))
	for _, c := range w.Cities {
		id, err := world.ParseTileID(c.Tile)
		if err != nil {
			return nil, nil, fmt.Errorf("city %q: %w", c.ID, err)
		}
		cities = append(cities, world.City{ID: c.ID, Name: c.Name, Tile: id, Prices: c.Prices})
	}
	npcs := make([]world.NPC, 0, len(w.NPCs))
	for _, n := range w.NPCs {
		path := make([]world.TileID, 0, len(n.Path))
		for _, raw := range n.Path {
			id, err := world.ParseTileID(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("npc %q: %w", n.ID, err)
			}
			path = append(path, id)
		}
		npcs = append(npcs, world.NPC{
			ID:            n.ID,
			Name:          n.Name,
			Speed:         1 / float64(n.TileEvery.Milliseconds()),
			Path:          path,
			PathCreatedAt: time.UnixMilli(n.StartedAtMs),
		})
	}
	return cities, npcs, nil
}

// Build generates the map and assembles the full world snapshot.
func (w World) Build() (*world.Snapshot, error) {
	gen, err := w.GenConfig()
	if err != nil {
		return nil, err
	}
	m, err := world.Generate(gen)
	if err != nil {
		return nil, err
	}
	cities, npcs, err := w.CitiesAndNPCs()
	if err != nil {
		return nil, err
	}
	return world.NewSnapshot(m, cities, npcs)
}
