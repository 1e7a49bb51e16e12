package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	schema "tradewinds/db"
	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
	"tradewinds/internal/domain/world"

	"gorm.io/gorm"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TRADEWINDS_DB_DSN")
	if dsn == "" {
		t.Skip("TRADEWINDS_DB_DSN is required for integration test")
	}
	return dsn
}

func openMigrated(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenPostgres(requireDSN(t))
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := ApplyMigrations(context.Background(), db, schema.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func itShip(id string) fleet.Ship {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return fleet.Ship{
		ID: id, OwnerID: "it-owner-" + id, Name: "Gull", Class: "plank", CityID: "port-royal",
		Cargo:    fleet.Cargo{Gold: 100, Goods: map[string]int{"rum": 2}},
		Capacity: 10, Speed: 1.0 / 5000, Version: 1, CreatedAt: now, UpdatedAt: now,
	}
}

func TestShipRepo_RoundTripAndVersioning(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	id := "it-ship-roundtrip"
	_ = db.Exec("DELETE FROM sail_executions WHERE ship_id = ?", id).Error
	_ = db.Exec("DELETE FROM ships WHERE id = ?", id).Error

	repo := NewShipRepo(db)
	seed := itShip(id)
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, seed); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected duplicate insert conflict, got %v", err)
	}

	tx := NewTxManager(db)
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		s, err := repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		s.Path = &fleet.Path{Tiles: []world.TileID{"0:0", "1:0"}, CreatedAt: s.CreatedAt}
		s.Version = 2
		return repo.SaveWithVersion(txCtx, s, 1)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 2 || got.Path.Len() != 2 || got.Cargo.Goods["rum"] != 2 {
		t.Fatalf("unexpected ship %+v", got)
	}
	if err := repo.SaveWithVersion(ctx, got, 1); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected stale version conflict, got %v", err)
	}
}

func TestSailExecutionAndLogRepos_Persist(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	id := "it-ship-exec"
	_ = db.Exec("DELETE FROM sail_executions WHERE ship_id = ?", id).Error
	_ = db.Exec("DELETE FROM ship_logs WHERE ship_id = ?", id).Error
	_ = db.Exec("DELETE FROM ships WHERE id = ?", id).Error

	ship := itShip(id)
	if err := NewShipRepo(db).Create(ctx, ship); err != nil {
		t.Fatalf("create ship: %v", err)
	}
	execs := NewSailExecutionRepo(db)
	rec := ports.SailExecutionRecord{
		UserID: ship.OwnerID, IdempotencyKey: "k1", ShipID: id, Ship: ship,
		Outcome:   sail.Outcome{FinalCityID: "tortuga", Events: []sail.Event{{Kind: sail.EventLog, Text: "arrived"}}},
		AppliedAt: time.Now(),
	}
	if err := execs.SaveExecution(ctx, rec); err != nil {
		t.Fatalf("save execution: %v", err)
	}
	if err := execs.SaveExecution(ctx, rec); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected duplicate key conflict, got %v", err)
	}
	got, err := execs.GetByIdempotencyKey(ctx, ship.OwnerID, "k1")
	if err != nil || got.Outcome.FinalCityID != "tortuga" || len(got.Outcome.Events) != 1 {
		t.Fatalf("unexpected execution %+v %v", got, err)
	}

	logs := NewLogRepo(db)
	base := time.Now().UTC().Truncate(time.Millisecond)
	if err := logs.Append(ctx, []fleet.LogEntry{
		{ID: id + "-1", UserID: ship.OwnerID, ShipID: id, Text: "older", CreatedAt: base},
		{ID: id + "-2", UserID: ship.OwnerID, ShipID: id, Text: "newer", CreatedAt: base.Add(time.Second)},
	}); err != nil {
		t.Fatalf("append logs: %v", err)
	}
	rows, err := logs.ListByUser(ctx, ports.LogQuery{UserID: ship.OwnerID, Limit: 10})
	if err != nil || len(rows) != 2 || rows[0].Text != "newer" {
		t.Fatalf("unexpected rows %+v %v", rows, err)
	}
}

func TestShipRepo_CountByOwnerSerialisesCommissions(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	owner := "it-owner-limit"
	_ = db.Exec("DELETE FROM ships WHERE owner_id = ?", owner).Error

	repo := NewShipRepo(db)
	tx := NewTxManager(db)
	const limit = 1
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = tx.RunInTx(ctx, func(txCtx context.Context) error {
				n, err := repo.CountByOwner(txCtx, owner)
				if err != nil {
					return err
				}
				if n >= limit {
					return fleet.ErrShipLimitReached
				}
				time.Sleep(50 * time.Millisecond)
				s := itShip(fmt.Sprintf("it-limit-%d", i))
				s.OwnerID = owner
				return repo.Create(txCtx, s)
			})
		}(i)
	}
	wg.Wait()

	n, err := repo.CountByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != limit {
		t.Fatalf("expected %d ship for owner, got %d", limit, n)
	}
}
