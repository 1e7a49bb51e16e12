package ports

import (
	"context"
	"time"

	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
)

// SailExecutionRecord is a committed sail, stored so that a retried request
// with the same idempotency key replays the outcome instead of sailing twice.
type SailExecutionRecord struct {
	UserID         string
	IdempotencyKey string
	ShipID         string
	Outcome        sail.Outcome
	Ship           fleet.Ship
	AppliedAt      time.Time
}

type ShipRepository interface {
	GetByID(ctx context.Context, shipID string) (fleet.Ship, error)
	// GetForUpdate loads the ship and holds it against concurrent writers
	// until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, shipID string) (fleet.Ship, error)
	ListByOwner(ctx context.Context, ownerID string) ([]fleet.Ship, error)
	// CountByOwner counts the owner's ships. Inside a transaction it also
	// holds the owner against concurrent CountByOwner calls until the
	// transaction ends.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	Create(ctx context.Context, ship fleet.Ship) error
	SaveWithVersion(ctx context.Context, ship fleet.Ship, expectedVersion int64) error
}

type SailExecutionRepository interface {
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*SailExecutionRecord, error)
	SaveExecution(ctx context.Context, execution SailExecutionRecord) error
}

// LogQuery filters a user's log rows. Zero From/To leave that side open.
type LogQuery struct {
	UserID string
	Limit  int
	From   time.Time
	To     time.Time
}

type LogRepository interface {
	Append(ctx context.Context, entries []fleet.LogEntry) error
	// ListByUser returns rows newest first.
	ListByUser(ctx context.Context, q LogQuery) ([]fleet.LogEntry, error)
}
