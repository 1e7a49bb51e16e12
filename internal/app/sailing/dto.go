package sailing

import (
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
)

type Request struct {
	UserID         string   `json:"-"`
	ShipID         string   `json:"-"`
	IdempotencyKey string   `json:"idempotency_key"`
	Path           []string `json:"path"`
}

type Response struct {
	Ship     fleet.Ship   `json:"ship"`
	Outcome  sail.Outcome `json:"outcome"`
	Replayed bool         `json:"replayed"`
}

// ShipSailed is the payload published on the ships channel after commit.
type ShipSailed struct {
	ShipID    string       `json:"ship_id"`
	OwnerID   string       `json:"owner_id"`
	Name      string       `json:"name"`
	Path      fleet.Path   `json:"path"`
	Speed     float64      `json:"speed"`
	ArrivesAt int64        `json:"arrives_at"`
	Sunk      bool         `json:"sunk"`
	Events    []sail.Event `json:"events"`
}
