// Package shipview resolves where a stored ship is right now and builds the
// log rows use cases write about it.
package shipview

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
	"tradewinds/internal/domain/world"
)

// Locate interpolates the ship's position at now.
func Locate(ship fleet.Ship, w *world.Snapshot, now time.Time) (sail.Position, error) {
	city, ok := w.City(ship.CityID)
	if !ok {
		return sail.Position{}, fmt.Errorf("ship %s: %w: %s", ship.ID, sail.ErrUnknownCity, ship.CityID)
	}
	return sail.ShipPosition(ship, city.Tile, now), nil
}

// RequireDocked returns the city the ship is moored in, or why it cannot
// trade there.
func RequireDocked(ship fleet.Ship, w *world.Snapshot, now time.Time) (world.City, error) {
	if ship.Sunk {
		return world.City{}, sail.ErrShipSunk
	}
	city, ok := w.City(ship.CityID)
	if !ok {
		return world.City{}, fleet.ErrNotDocked
	}
	if sail.ShipPosition(ship, city.Tile, now).InTransit {
		return world.City{}, sail.ErrShipInTransit
	}
	return city, nil
}

// NewLogEntry stamps a row with a ULID so ids sort the same way as
// CreatedAt.
func NewLogEntry(userID, shipID, text string, at time.Time) fleet.LogEntry {
	return fleet.LogEntry{
		ID:        ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		UserID:    userID,
		ShipID:    shipID,
		Text:      text,
		CreatedAt: at,
	}
}
