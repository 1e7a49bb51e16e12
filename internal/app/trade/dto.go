package trade

import "tradewinds/internal/domain/fleet"

// OrderRequest buys or sells Quantity units of CargoType at the city's
// current spot price.
type OrderRequest struct {
	UserID    string `json:"-"`
	ShipID    string `json:"-"`
	CargoType string `json:"cargo_type"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	Ship      fleet.Ship `json:"ship"`
	UnitPrice int        `json:"unit_price"`
	Total     int        `json:"total"`
}

type ExchangeRequest struct {
	UserID     string         `json:"-"`
	FromShipID string         `json:"-"`
	ToShipID   string         `json:"to_ship_id"`
	Goods      map[string]int `json:"goods"`
	Gold       int            `json:"gold"`
}

type ExchangeResponse struct {
	From fleet.Ship `json:"from"`
	To   fleet.Ship `json:"to"`
}
