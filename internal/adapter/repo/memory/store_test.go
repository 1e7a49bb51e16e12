package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
)

func seededShip() fleet.Ship {
	return fleet.Ship{
		ID: "ship-1", OwnerID: "user-1", Name: "Gull", CityID: "port-royal",
		Capacity: 10, Speed: 1.0 / 5000, Version: 1,
		Cargo: fleet.Cargo{Gold: 100, Goods: map[string]int{"rum": 0}},
	}
}

func TestShipRepo_SaveWithVersionDetectsConflict(t *testing.T) {
	store := NewStore()
	repo := NewShipRepo(store)
	ctx := context.Background()
	if err := repo.Create(ctx, seededShip()); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, seededShip()); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected duplicate create conflict, got %v", err)
	}

	s, err := repo.GetByID(ctx, "ship-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	s.Version = 2
	if err := repo.SaveWithVersion(ctx, s, 1); err != nil {
		t.Fatalf("SaveWithVersion error: %v", err)
	}
	if err := repo.SaveWithVersion(ctx, s, 1); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected stale version conflict, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShipRepo_ReturnsCopies(t *testing.T) {
	store := NewStore()
	store.SeedShip(seededShip())
	repo := NewShipRepo(store)

	s, _ := repo.GetByID(context.Background(), "ship-1")
	s.Cargo.Goods["rum"] = 99
	again, _ := repo.GetByID(context.Background(), "ship-1")
	if again.Cargo.Goods["rum"] != 0 {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestShipRepo_ListAndCountByOwner(t *testing.T) {
	store := NewStore()
	a := seededShip()
	b := seededShip()
	b.ID = "ship-2"
	c := seededShip()
	c.ID = "ship-3"
	c.OwnerID = "user-2"
	for _, s := range []fleet.Ship{a, b, c} {
		store.SeedShip(s)
	}
	repo := NewShipRepo(store)
	ships, _ := repo.ListByOwner(context.Background(), "user-1")
	if len(ships) != 2 || ships[0].ID != "ship-1" || ships[1].ID != "ship-2" {
		t.Fatalf("unexpected ships %+v", ships)
	}
	n, _ := repo.CountByOwner(context.Background(), "user-2")
	if n != 1 {
		t.Fatalf("expected 1 ship for user-2, got %d", n)
	}
}

func TestTxManager_NestedCallsDoNotDeadlock(t *testing.T) {
	store := NewStore()
	tx := NewTxManager(store)
	repo := NewShipRepo(store)
	err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := repo.Create(ctx, seededShip()); err != nil {
			return err
		}
		return tx.RunInTx(ctx, func(inner context.Context) error {
			_, err := repo.GetForUpdate(inner, "ship-1")
			return err
		})
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}
}

func TestTxManager_SerialisesVersionedWrites(t *testing.T) {
	store := NewStore()
	store.SeedShip(seededShip())
	tx := NewTxManager(store)
	repo := NewShipRepo(store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tx.RunInTx(context.Background(), func(ctx context.Context) error {
				s, err := repo.GetForUpdate(ctx, "ship-1")
				if err != nil {
					return err
				}
				if s.Version != 1 {
					return ports.ErrConflict
				}
				s.Version = 2
				return repo.SaveWithVersion(ctx, s, 1)
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, ports.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	if wins != 1 || conflicts != 7 {
		t.Fatalf("expected exactly one winner, got wins=%d conflicts=%d", wins, conflicts)
	}
}

func TestSailExecutionRepo_RejectsDuplicateKey(t *testing.T) {
	repo := NewSailExecutionRepo(NewStore())
	rec := ports.SailExecutionRecord{UserID: "u", IdempotencyKey: "k", ShipID: "s", Ship: seededShip()}
	if err := repo.SaveExecution(context.Background(), rec); err != nil {
		t.Fatalf("SaveExecution error: %v", err)
	}
	if err := repo.SaveExecution(context.Background(), rec); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := repo.GetByIdempotencyKey(context.Background(), "u", "k")
	if err != nil || got.ShipID != "s" {
		t.Fatalf("unexpected replay %+v %v", got, err)
	}
	if _, err := repo.GetByIdempotencyKey(context.Background(), "other", "k"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("keys must be scoped per user, got %v", err)
	}
}

func TestLogRepo_ListsNewestFirstWithinWindow(t *testing.T) {
	repo := NewLogRepo(NewStore())
	at := func(ms int64) time.Time { return time.UnixMilli(ms) }
	_ = repo.Append(context.Background(), []fleet.LogEntry{
		{ID: "1", UserID: "u", Text: "first", CreatedAt: at(1_000)},
		{ID: "2", UserID: "u", Text: "second", CreatedAt: at(2_000)},
		{ID: "3", UserID: "other", Text: "foreign", CreatedAt: at(2_500)},
		{ID: "4", UserID: "u", Text: "future", CreatedAt: at(9_000)},
	})
	rows, err := repo.ListByUser(context.Background(), ports.LogQuery{UserID: "u", To: at(5_000)})
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(rows) != 2 || rows[0].Text != "second" || rows[1].Text != "first" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	rows, _ = repo.ListByUser(context.Background(), ports.LogQuery{UserID: "u", From: at(1_500), Limit: 1})
	if len(rows) != 1 || rows[0].Text != "future" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
