// Command worldgen generates the world described by a YAML definition and
// stores it in a SQLite file the server can load with TRADEWINDS_WORLD_DB.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	worldsqlite "tradewinds/internal/adapter/world/sqlite"
	"tradewinds/internal/config"
	"tradewinds/internal/domain/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("worldgen failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("worldgen", flag.ContinueOnError)
	configPath := fs.String("config", "./world.yaml", "world definition")
	out := fs.String("out", "./world.db", "sqlite file to write")
	seed := fs.Int64("seed", 0, "override the generation seed")
	preview := fs.Bool("preview", false, "print an ascii map to stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWorld(*configPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Generation.Seed = *seed
	}
	snap, err := cfg.Build()
	if err != nil {
		return err
	}

	store, err := worldsqlite.Open(*out)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(snap); err != nil {
		return err
	}
	logger.Info("world saved", "out", *out, "seed", cfg.Generation.Seed, "tiles", snap.Map.Len(), "cities", len(snap.Cities), "npcs", len(snap.NPCs))

	if *preview {
		_, err = io.WriteString(stdout, render(snap))
	}
	return err
}

var glyphs = map[world.Terrain]byte{
	world.TerrainOcean:     '~',
	world.TerrainGrassland: '.',
	world.TerrainForest:    'T',
	world.TerrainMountain:  '^',
	world.TerrainDesert:    ':',
	world.TerrainSwamp:     '%',
	world.TerrainTundra:    '*',
}

// render draws one character per tile, with cities as '#'.
func render(snap *world.Snapshot) string {
	var b strings.Builder
	y := -1
	for _, t := range snap.Map.Tiles() {
		if t.Y != y {
			if y >= 0 {
				b.WriteByte('\n')
			}
			y = t.Y
		}
		if _, ok := snap.CityAt(t.ID()); ok {
			b.WriteByte('#')
			continue
		}
		g, ok := glyphs[t.Terrain]
		if !ok {
			g = '?'
		}
		b.WriteByte(g)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%d cities, %d npcs\n", len(snap.Cities), len(snap.NPCs))
	return b.String()
}
