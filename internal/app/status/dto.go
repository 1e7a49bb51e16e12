package status

import (
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"
)

type Request struct {
	UserID string
	ShipID string
}

type Response struct {
	Ship      fleet.Ship    `json:"ship"`
	Position  sail.Position `json:"position"`
	InTransit bool          `json:"in_transit"`
	ArrivesAt int64         `json:"arrives_at,omitempty"`
}

type ListResponse struct {
	Ships []Response `json:"ships"`
}
