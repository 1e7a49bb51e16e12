package trade

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/shared/shipview"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
	"tradewinds/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid trade request")

// MaxOrderQuantity bounds a single buy or sell order.
const MaxOrderQuantity = 1_000_000

type UseCase struct {
	TxManager ports.TxManager
	Ships     ports.ShipRepository
	Logs      ports.LogRepository
	World     ports.WorldProvider
	Metrics   ports.ActionMetrics
	Now       func() time.Time
}

type side int

const (
	sideBuy side = iota
	sideSell
)

func (u UseCase) Buy(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	return u.order(ctx, req, sideBuy)
}

func (u UseCase) Sell(ctx context.Context, req OrderRequest) (OrderResponse, error) {
	return u.order(ctx, req, sideSell)
}

func (u UseCase) order(ctx context.Context, req OrderRequest, s side) (OrderResponse, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.ShipID = strings.TrimSpace(req.ShipID)
	req.CargoType = strings.TrimSpace(req.CargoType)
	if req.UserID == "" || req.ShipID == "" || req.CargoType == "" {
		return OrderResponse{}, ErrInvalidRequest
	}
	if req.Quantity <= 0 || req.Quantity > MaxOrderQuantity {
		return OrderResponse{}, fleet.ErrInvalidQuantity
	}
	now := u.now()

	var out OrderResponse
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		ship, city, err := u.dockedShip(txCtx, req.UserID, req.ShipID, now)
		if err != nil {
			return err
		}
		curve, ok := city.Curve(req.CargoType)
		if !ok {
			return fleet.ErrCityDoesNotTrade
		}
		price := sail.Price(curve.Amplitude, curve.Midline, city.SeedFor(curve), now)

		updated := ship.Clone()
		verb := "bought"
		if s == sideBuy {
			err = updated.Buy(req.CargoType, req.Quantity, price)
		} else {
			verb = "sold"
			err = updated.Sell(req.CargoType, req.Quantity, price)
		}
		if err != nil {
			return err
		}
		if err := u.save(txCtx, &updated, ship.Version, now); err != nil {
			return err
		}
		total := price * req.Quantity
		text := fmt.Sprintf("%s %s %d %s for %d gold in %s", ship.Name, verb, req.Quantity, req.CargoType, total, city.Name)
		if err := u.Logs.Append(txCtx, []fleet.LogEntry{shipview.NewLogEntry(req.UserID, ship.ID, text, now)}); err != nil {
			return err
		}
		out = OrderResponse{Ship: updated, UnitPrice: price, Total: total}
		return nil
	})
	if err != nil {
		u.recordError(err)
		return OrderResponse{}, err
	}
	if s == sideBuy {
		u.recordSuccess(ports.ResultBought)
	} else {
		u.recordSuccess(ports.ResultSold)
	}
	return out, nil
}

// Exchange moves goods and gold between two of the caller's ships moored in
// the same city.
func (u UseCase) Exchange(ctx context.Context, req ExchangeRequest) (ExchangeResponse, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.FromShipID = strings.TrimSpace(req.FromShipID)
	req.ToShipID = strings.TrimSpace(req.ToShipID)
	if req.UserID == "" || req.FromShipID == "" || req.ToShipID == "" || req.FromShipID == req.ToShipID {
		return ExchangeResponse{}, ErrInvalidRequest
	}
	now := u.now()

	var out ExchangeResponse
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Lock in id order so two opposite exchanges cannot deadlock.
		firstID, secondID := req.FromShipID, req.ToShipID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}
		first, firstCity, err := u.dockedShip(txCtx, req.UserID, firstID, now)
		if err != nil {
			return err
		}
		second, _, err := u.dockedShip(txCtx, req.UserID, secondID, now)
		if err != nil {
			return err
		}
		from, to := first.Clone(), second.Clone()
		if from.ID != req.FromShipID {
			from, to = to, from
		}
		fromVersion, toVersion := from.Version, to.Version

		if err := fleet.Exchange(&from, &to, req.Goods, req.Gold); err != nil {
			return err
		}
		if err := u.save(txCtx, &from, fromVersion, now); err != nil {
			return err
		}
		if err := u.save(txCtx, &to, toVersion, now); err != nil {
			return err
		}
		text := fmt.Sprintf("%s handed %s to %s in %s", from.Name, describe(req.Goods, req.Gold), to.Name, firstCity.Name)
		if err := u.Logs.Append(txCtx, []fleet.LogEntry{shipview.NewLogEntry(req.UserID, from.ID, text, now)}); err != nil {
			return err
		}
		out = ExchangeResponse{From: from, To: to}
		return nil
	})
	if err != nil {
		u.recordError(err)
		return ExchangeResponse{}, err
	}
	u.recordSuccess(ports.ResultExchanged)
	return out, nil
}

func (u UseCase) dockedShip(ctx context.Context, userID, shipID string, now time.Time) (fleet.Ship, world.City, error) {
	ship, err := u.Ships.GetForUpdate(ctx, shipID)
	if err != nil {
		return fleet.Ship{}, world.City{}, err
	}
	if ship.OwnerID != userID {
		return fleet.Ship{}, world.City{}, fleet.ErrNotOwner
	}
	snapshot, err := u.World.World(ctx)
	if err != nil {
		return fleet.Ship{}, world.City{}, err
	}
	city, err := shipview.RequireDocked(ship, snapshot, now)
	if err != nil {
		return fleet.Ship{}, world.City{}, err
	}
	return ship, city, nil
}

func (u UseCase) save(ctx context.Context, ship *fleet.Ship, expectedVersion int64, now time.Time) error {
	ship.Version = expectedVersion + 1
	ship.UpdatedAt = now
	return u.Ships.SaveWithVersion(ctx, *ship, expectedVersion)
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u UseCase) recordError(err error) {
	if u.Metrics == nil {
		return
	}
	if errors.Is(err, ports.ErrConflict) {
		u.Metrics.RecordConflict()
		return
	}
	u.Metrics.RecordFailure()
}

func (u UseCase) recordSuccess(code ports.ResultCode) {
	if u.Metrics != nil {
		u.Metrics.RecordSuccess(code)
	}
}

func describe(goods map[string]int, gold int) string {
	types := make([]string, 0, len(goods))
	for t, n := range goods {
		if n > 0 {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types)+1)
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%d %s", goods[t], t))
	}
	if gold > 0 {
		parts = append(parts, fmt.Sprintf("%d gold", gold))
	}
	return strings.Join(parts, ", ")
}
