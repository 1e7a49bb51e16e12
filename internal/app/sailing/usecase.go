package sailing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/shared/shipview"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
)

const (
	ChannelShips  = "ships"
	MsgShipSailed = "ship_sailed"
	maxPathTiles  = 4096
)

var ErrInvalidRequest = errors.New("invalid sail request")

type UseCase struct {
	TxManager  ports.TxManager
	Ships      ports.ShipRepository
	Executions ports.SailExecutionRepository
	Logs       ports.LogRepository
	World      ports.WorldProvider
	Publisher  ports.Publisher
	Scheduler  ports.EventScheduler
	Metrics    ports.ActionMetrics
	Logger     *slog.Logger
	Now        func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.ShipID = strings.TrimSpace(req.ShipID)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.UserID == "" || req.ShipID == "" || req.IdempotencyKey == "" || len(req.Path) == 0 || len(req.Path) > maxPathTiles {
		return Response{}, ErrInvalidRequest
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	logger := u.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var out Response
	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		exec, err := u.Executions.GetByIdempotencyKey(txCtx, req.UserID, req.IdempotencyKey)
		if err == nil && exec != nil {
			if exec.ShipID != req.ShipID {
				return ErrInvalidRequest
			}
			out = Response{Ship: exec.Ship, Outcome: exec.Outcome, Replayed: true}
			return nil
		}
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}

		ship, err := u.Ships.GetForUpdate(txCtx, req.ShipID)
		if err != nil {
			return err
		}
		if ship.OwnerID != req.UserID {
			return fleet.ErrNotOwner
		}
		snapshot, err := u.World.World(txCtx)
		if err != nil {
			return err
		}

		now := nowFn()
		outcome, err := sail.Validate(sail.ValidateInput{
			Path:  req.Path,
			Ship:  ship,
			World: snapshot,
			Now:   now,
		})
		if err != nil {
			return err
		}

		updated := ship.Clone()
		outcome.Apply(&updated)
		updated.Version = ship.Version + 1
		updated.UpdatedAt = now
		if err := u.Ships.SaveWithVersion(txCtx, updated, ship.Version); err != nil {
			return err
		}

		entries := make([]fleet.LogEntry, 0, 2)
		for _, evt := range outcome.Events {
			if evt.Kind == sail.EventTileReveal {
				continue
			}
			entries = append(entries, shipview.NewLogEntry(req.UserID, ship.ID, evt.Text, evt.At))
		}
		if len(entries) > 0 {
			if err := u.Logs.Append(txCtx, entries); err != nil {
				return err
			}
		}

		if err := u.Executions.SaveExecution(txCtx, ports.SailExecutionRecord{
			UserID:         req.UserID,
			IdempotencyKey: req.IdempotencyKey,
			ShipID:         ship.ID,
			Outcome:        outcome,
			Ship:           updated,
			AppliedAt:      now,
		}); err != nil {
			return err
		}

		out = Response{Ship: updated, Outcome: outcome}
		return nil
	})
	if err != nil {
		if errors.Is(err, sail.ErrRunawayComputation) {
			logger.Error("sail validation exceeded collision step limit", "ship_id", req.ShipID, "err", err)
		}
		if u.Metrics != nil {
			if errors.Is(err, ports.ErrConflict) {
				u.Metrics.RecordConflict()
			} else {
				u.Metrics.RecordFailure()
			}
		}
		return Response{}, err
	}
	if out.Replayed {
		return out, nil
	}

	u.fanOut(logger, out)
	if u.Metrics != nil {
		if out.Outcome.Sunk {
			u.Metrics.RecordSuccess(ports.ResultSunk)
		} else {
			u.Metrics.RecordSuccess(ports.ResultSailed)
		}
	}
	return out, nil
}

// fanOut runs after commit. A failed publish never rolls back a sail.
func (u UseCase) fanOut(logger *slog.Logger, out Response) {
	if u.Publisher != nil {
		payload := ShipSailed{
			ShipID:    out.Ship.ID,
			OwnerID:   out.Ship.OwnerID,
			Name:      out.Ship.Name,
			Path:      out.Outcome.Path,
			Speed:     out.Ship.Speed,
			ArrivesAt: out.Outcome.ArrivesAt.UnixMilli(),
			Sunk:      out.Outcome.Sunk,
			Events:    out.Outcome.Events,
		}
		if err := u.Publisher.Publish(ChannelShips, MsgShipSailed, payload); err != nil {
			logger.Warn("publish ship_sailed failed", "ship_id", out.Ship.ID, "err", err)
		}
	}
	if u.Scheduler != nil {
		u.Scheduler.Schedule(out.Ship.OwnerID, out.Ship.ID, out.Outcome.Events)
	}
}
