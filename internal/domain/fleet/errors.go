package fleet

import "errors"

var (
	ErrInvalidShip       = errors.New("invalid ship")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrUnknownCargo      = errors.New("unknown cargo type")
	ErrInsufficientSpace = errors.New("insufficient cargo space")
	ErrInsufficientGold  = errors.New("insufficient gold")
	ErrInsufficientCargo = errors.New("insufficient cargo")
	ErrNotCoLocated      = errors.New("ships are not in the same city")

	ErrCityDoesNotTrade = errors.New("city does not trade this cargo")
	ErrNotDocked        = errors.New("ship is not docked")
	ErrNotOwner         = errors.New("ship belongs to another captain")
	ErrShipLimitReached = errors.New("ship limit reached")
)
