package shipyard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/shared/shipview"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
)

var (
	ErrInvalidRequest = errors.New("invalid commission request")
	ErrUnknownClass   = errors.New("unknown ship class")
)

type Request struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
	Class  string `json:"class"`
	CityID string `json:"city_id"`
}

type Response struct {
	Ship fleet.Ship `json:"ship"`
}

// Rules are the shipyard's game settings, loaded from the world config.
type Rules struct {
	Classes          map[string]fleet.Class
	CargoTypes       []string
	StartingGold     int
	MaxShipsPerOwner int
}

type UseCase struct {
	TxManager ports.TxManager
	Ships     ports.ShipRepository
	Logs      ports.LogRepository
	World     ports.WorldProvider
	Rules     Rules
	Metrics   ports.ActionMetrics
	NewID     func() string
	Now       func() time.Time
}

func (u UseCase) Commission(ctx context.Context, req Request) (Response, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)
	req.Class = strings.TrimSpace(req.Class)
	req.CityID = strings.TrimSpace(req.CityID)
	if req.UserID == "" || req.Name == "" || req.Class == "" || req.CityID == "" {
		return Response{}, ErrInvalidRequest
	}
	class, ok := u.Rules.Classes[req.Class]
	if !ok {
		return Response{}, ErrUnknownClass
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	newID := u.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		snapshot, err := u.World.World(txCtx)
		if err != nil {
			return err
		}
		city, ok := snapshot.City(req.CityID)
		if !ok {
			return sail.ErrUnknownCity
		}
		if u.Rules.MaxShipsPerOwner > 0 {
			n, err := u.Ships.CountByOwner(txCtx, req.UserID)
			if err != nil {
				return err
			}
			if n >= u.Rules.MaxShipsPerOwner {
				return fleet.ErrShipLimitReached
			}
		}

		now := nowFn()
		ship, err := fleet.NewShip(newID(), req.UserID, req.Name, class, city.ID, u.Rules.StartingGold, u.Rules.CargoTypes, now)
		if err != nil {
			return err
		}
		if err := u.Ships.Create(txCtx, ship); err != nil {
			return err
		}
		text := fmt.Sprintf("%s was commissioned in %s", ship.Name, city.Name)
		if err := u.Logs.Append(txCtx, []fleet.LogEntry{shipview.NewLogEntry(req.UserID, ship.ID, text, now)}); err != nil {
			return err
		}
		out = Response{Ship: ship}
		return nil
	})
	if err != nil {
		if u.Metrics != nil {
			if errors.Is(err, ports.ErrConflict) {
				u.Metrics.RecordConflict()
			} else {
				u.Metrics.RecordFailure()
			}
		}
		return Response{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordSuccess(ports.ResultCommissioned)
	}
	return out, nil
}
