// Package sqlite keeps a generated world in a single SQLite file so every
// server process sails on the same map.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tradewinds/internal/domain/world"
)

type Store struct {
	conn *sqlx.DB
}

func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open world db: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate world db: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tiles (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		terrain TEXT NOT NULL,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS cities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tile TEXT NOT NULL UNIQUE,
		prices_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS npcs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		speed REAL NOT NULL,
		path_json TEXT NOT NULL,
		path_created_at_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

type tileRow struct {
	X       int    `db:"x"`
	Y       int    `db:"y"`
	Terrain string `db:"terrain"`
}

type cityRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Tile       string `db:"tile"`
	PricesJSON string `db:"prices_json"`
}

type npcRow struct {
	ID              string  `db:"id"`
	Name            string  `db:"name"`
	Speed           float64 `db:"speed"`
	PathJSON        string  `db:"path_json"`
	PathCreatedAtMs int64   `db:"path_created_at_ms"`
}

// Save replaces whatever world the file held.
func (s *Store) Save(snap *world.Snapshot) error {
	if snap == nil || snap.Map == nil {
		return fmt.Errorf("%w: nil snapshot", world.ErrInvalidMap)
	}
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"tiles", "cities", "npcs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	tileStmt, err := tx.Preparex("INSERT INTO tiles (x, y, terrain) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer tileStmt.Close()
	for _, t := range snap.Map.Tiles() {
		if _, err := tileStmt.Exec(t.X, t.Y, string(t.Terrain)); err != nil {
			return fmt.Errorf("insert tile %s: %w", t.ID(), err)
		}
	}

	ids := make([]string, 0, len(snap.Cities))
	for id := range snap.Cities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := snap.Cities[id]
		prices, err := json.Marshal(c.Prices)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExec(
			"INSERT INTO cities (id, name, tile, prices_json) VALUES (:id, :name, :tile, :prices_json)",
			cityRow{ID: c.ID, Name: c.Name, Tile: c.Tile.String(), PricesJSON: string(prices)},
		); err != nil {
			return fmt.Errorf("insert city %s: %w", c.ID, err)
		}
	}

	for _, n := range snap.NPCs {
		path, err := json.Marshal(n.Path)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExec(
			"INSERT INTO npcs (id, name, speed, path_json, path_created_at_ms) VALUES (:id, :name, :speed, :path_json, :path_created_at_ms)",
			npcRow{ID: n.ID, Name: n.Name, Speed: n.Speed, PathJSON: string(path), PathCreatedAtMs: n.PathCreatedAt.UnixMilli()},
		); err != nil {
			return fmt.Errorf("insert npc %s: %w", n.ID, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES ('saved_at', ?)",
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Load reads the stored world. ok is false when the file holds no world yet.
func (s *Store) Load() (snap *world.Snapshot, ok bool, err error) {
	var savedAt string
	if err := s.conn.Get(&savedAt, "SELECT value FROM world_meta WHERE key = 'saved_at'"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var tileRows []tileRow
	if err := s.conn.Select(&tileRows, "SELECT x, y, terrain FROM tiles ORDER BY y, x"); err != nil {
		return nil, false, fmt.Errorf("load tiles: %w", err)
	}
	tiles := make([]world.Tile, 0, len(tileRows))
	for _, r := range tileRows {
		tiles = append(tiles, world.Tile{X: r.X, Y: r.Y, Terrain: world.Terrain(r.Terrain)})
	}
	m, err := world.NewMap(tiles)
	if err != nil {
		return nil, false, err
	}

	var cityRows []cityRow
	if err := s.conn.Select(&cityRows, "SELECT id, name, tile, prices_json FROM cities ORDER BY id"); err != nil {
		return nil, false, fmt.Errorf("load cities: %w", err)
	}
	cities := make([]world.City, 0, len(cityRows))
	for _, r := range cityRows {
		c := world.City{ID: r.ID, Name: r.Name, Tile: world.TileID(r.Tile)}
		if err := json.Unmarshal([]byte(r.PricesJSON), &c.Prices); err != nil {
			return nil, false, fmt.Errorf("decode prices of %s: %w", r.ID, err)
		}
		cities = append(cities, c)
	}

	var npcRows []npcRow
	if err := s.conn.Select(&npcRows, "SELECT id, name, speed, path_json, path_created_at_ms FROM npcs ORDER BY id"); err != nil {
		return nil, false, fmt.Errorf("load npcs: %w", err)
	}
	npcs := make([]world.NPC, 0, len(npcRows))
	for _, r := range npcRows {
		n := world.NPC{ID: r.ID, Name: r.Name, Speed: r.Speed, PathCreatedAt: time.UnixMilli(r.PathCreatedAtMs)}
		if err := json.Unmarshal([]byte(r.PathJSON), &n.Path); err != nil {
			return nil, false, fmt.Errorf("decode path of %s: %w", r.ID, err)
		}
		npcs = append(npcs, n)
	}

	snap, err = world.NewSnapshot(m, cities, npcs)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}
