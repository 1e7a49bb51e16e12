package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tradewinds/internal/adapter/repo/gorm/model"
	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShipRepo struct {
	db *gorm.DB
}

func NewShipRepo(db *gorm.DB) ShipRepo {
	return ShipRepo{db: db}
}

func (r ShipRepo) GetByID(ctx context.Context, shipID string) (fleet.Ship, error) {
	return r.get(getDBFromCtx(ctx, r.db), shipID)
}

// GetForUpdate row-locks the ship until the surrounding transaction ends.
func (r ShipRepo) GetForUpdate(ctx context.Context, shipID string) (fleet.Ship, error) {
	return r.get(getDBFromCtx(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), shipID)
}

func (r ShipRepo) get(db *gorm.DB, shipID string) (fleet.Ship, error) {
	var m model.Ship
	if err := db.Where("id = ?", shipID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fleet.Ship{}, ports.ErrNotFound
		}
		return fleet.Ship{}, err
	}
	return toShip(m)
}

func (r ShipRepo) ListByOwner(ctx context.Context, ownerID string) ([]fleet.Ship, error) {
	rows := []model.Ship{}
	err := getDBFromCtx(ctx, r.db).
		Where(&model.Ship{OwnerID: ownerID}).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]fleet.Ship, 0, len(rows))
	for _, row := range rows {
		s, err := toShip(row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// CountByOwner takes a transaction-scoped advisory lock on the owner first
// when ctx carries a transaction, so commissions for one owner count and
// insert one at a time.
func (r ShipRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if tx, ok := txFromCtx(ctx); ok {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "ships:owner:"+ownerID).Error; err != nil {
			return 0, fmt.Errorf("lock owner %s: %w", ownerID, err)
		}
	}
	var n int64
	if err := getDBFromCtx(ctx, r.db).Model(&model.Ship{}).Where("owner_id = ?", ownerID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r ShipRepo) Create(ctx context.Context, ship fleet.Ship) error {
	m, err := fromShip(ship)
	if err != nil {
		return err
	}
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r ShipRepo) SaveWithVersion(ctx context.Context, ship fleet.Ship, expectedVersion int64) error {
	m, err := fromShip(ship)
	if err != nil {
		return err
	}
	updates := map[string]any{
		"name":            m.Name,
		"city_id":         m.CityID,
		"gold":            m.Gold,
		"goods":           m.Goods,
		"capacity":        m.Capacity,
		"speed":           m.Speed,
		"path":            m.Path,
		"path_created_at": m.PathCreatedAt,
		"sunk":            m.Sunk,
		"version":         m.Version,
		"updated_at":      m.UpdatedAt,
	}
	res := getDBFromCtx(ctx, r.db).Model(&model.Ship{}).
		Where("id = ? AND version = ?", ship.ID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return mapWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func fromShip(s fleet.Ship) (model.Ship, error) {
	goods, err := json.Marshal(s.Cargo.Goods)
	if err != nil {
		return model.Ship{}, fmt.Errorf("encode goods: %w", err)
	}
	m := model.Ship{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		Name:      s.Name,
		Class:     s.Class,
		CityID:    s.CityID,
		Gold:      int64(s.Cargo.Gold),
		Goods:     string(goods),
		Capacity:  int64(s.Capacity),
		Speed:     s.Speed,
		Sunk:      s.Sunk,
		Version:   s.Version,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Path != nil {
		tiles, err := json.Marshal(s.Path.Tiles)
		if err != nil {
			return model.Ship{}, fmt.Errorf("encode path: %w", err)
		}
		path := string(tiles)
		created := s.Path.CreatedAt
		m.Path = &path
		m.PathCreatedAt = &created
	}
	return m, nil
}

func toShip(m model.Ship) (fleet.Ship, error) {
	s := fleet.Ship{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Class:     m.Class,
		CityID:    m.CityID,
		Cargo:     fleet.Cargo{Gold: int(m.Gold), Goods: map[string]int{}},
		Capacity:  int(m.Capacity),
		Speed:     m.Speed,
		Sunk:      m.Sunk,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Goods != "" {
		if err := json.Unmarshal([]byte(m.Goods), &s.Cargo.Goods); err != nil {
			return fleet.Ship{}, fmt.Errorf("decode goods of ship %s: %w", m.ID, err)
		}
	}
	if m.Path != nil && m.PathCreatedAt != nil {
		var tiles []world.TileID
		if err := json.Unmarshal([]byte(*m.Path), &tiles); err != nil {
			return fleet.Ship{}, fmt.Errorf("decode path of ship %s: %w", m.ID, err)
		}
		s.Path = &fleet.Path{Tiles: tiles, CreatedAt: *m.PathCreatedAt}
	}
	return s, nil
}
