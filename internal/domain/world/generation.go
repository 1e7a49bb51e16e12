// World generation using layered simplex noise. Elevation and moisture
// fields are sampled per cell and mapped onto the terrain enumeration.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Seed          int64   `yaml:"seed"`           // 0 = random
	SeaLevel      float64 `yaml:"sea_level"`      // elevation below this is ocean (0.0–1.0)
	MountainLevel float64 `yaml:"mountain_level"` // elevation above this is mountain (0.0–1.0)

	// Overrides pins terrain on specific cells after noise, e.g. city sites
	// or NPC lanes that must stay navigable.
	Overrides map[TileID]Terrain `yaml:"-"`
}

func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:         48,
		Height:        32,
		Seed:          0,
		SeaLevel:      0.55,
		MountainLevel: 0.82,
	}
}

// Generate builds a Width x Height map. The same non-zero seed always
// yields the same map.
func Generate(cfg GenConfig) (*Map, error) {
	def := DefaultGenConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.SeaLevel <= 0 {
		cfg.SeaLevel = def.SeaLevel
	}
	if cfg.MountainLevel <= 0 {
		cfg.MountainLevel = def.MountainLevel
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	tiles := make([]Tile, 0, cfg.Width*cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			elev := octaveNoise(elevNoise, float64(x), float64(y), 4, 0.07, 0.5)
			moist := octaveNoise(moistNoise, float64(x), float64(y), 3, 0.05, 0.5)
			// Latitude: 0 at the equator row, 1 at the top and bottom rows.
			lat := 0.0
			if cfg.Height > 1 {
				lat = absf(float64(y)/float64(cfg.Height-1)*2 - 1)
			}
			t := Tile{X: x, Y: y, Terrain: deriveTerrain(elev, moist, lat, cfg)}
			if forced, ok := cfg.Overrides[t.ID()]; ok {
				t.Terrain = forced
			}
			tiles = append(tiles, t)
		}
	}
	return NewMap(tiles)
}

func deriveTerrain(elev, moist, lat float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		return TerrainOcean
	}
	if elev > cfg.MountainLevel {
		return TerrainMountain
	}
	if lat > 0.85 {
		return TerrainTundra
	}
	if moist < 0.3 && lat < 0.5 {
		return TerrainDesert
	}
	if moist > 0.7 && elev < cfg.SeaLevel+0.05 {
		return TerrainSwamp
	}
	if moist > 0.5 {
		return TerrainForest
	}
	return TerrainGrassland
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
