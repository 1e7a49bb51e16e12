package fleet

import (
	"strings"
	"time"
)

// NewShip commissions a docked ship with an empty hold for every cargo type.
func NewShip(id, ownerID, name string, class Class, cityID string, startingGold int, cargoTypes []string, now time.Time) (Ship, error) {
	name = strings.TrimSpace(name)
	if id == "" || ownerID == "" || name == "" || cityID == "" || class.Name == "" || class.Speed <= 0 || class.Capacity < 0 || startingGold < 0 {
		return Ship{}, ErrInvalidShip
	}
	goods := make(map[string]int, len(cargoTypes))
	for _, t := range cargoTypes {
		goods[t] = 0
	}
	return Ship{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Class:     class.Name,
		CityID:    cityID,
		Cargo:     Cargo{Gold: startingGold, Goods: goods},
		Capacity:  class.Capacity,
		Speed:     class.Speed,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Ship) checkGoods(cargoType string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if _, ok := s.Cargo.Goods[cargoType]; !ok {
		return ErrUnknownCargo
	}
	return nil
}

// Buy loads qty units at unitPrice each. On error the ship is unchanged.
func (s *Ship) Buy(cargoType string, qty, unitPrice int) error {
	if err := s.checkGoods(cargoType, qty); err != nil {
		return err
	}
	if unitPrice < 0 {
		return ErrInvalidQuantity
	}
	// Compare by division so a huge qty cannot wrap the product.
	if unitPrice > 0 && qty > s.Cargo.Gold/unitPrice {
		return ErrInsufficientGold
	}
	if qty > s.Capacity-s.Cargo.Used() {
		return ErrInsufficientSpace
	}
	s.Cargo.Gold -= qty * unitPrice
	s.Cargo.Goods[cargoType] += qty
	return nil
}

// Sell unloads qty units at unitPrice each. On error the ship is unchanged.
func (s *Ship) Sell(cargoType string, qty, unitPrice int) error {
	if err := s.checkGoods(cargoType, qty); err != nil {
		return err
	}
	if s.Cargo.Goods[cargoType] < qty {
		return ErrInsufficientCargo
	}
	s.Cargo.Goods[cargoType] -= qty
	s.Cargo.Gold += qty * unitPrice
	return nil
}

// Exchange moves goods and gold from one ship to another in the same city.
// Every check runs before either hold is touched.
func Exchange(from, to *Ship, goods map[string]int, gold int) error {
	if from == nil || to == nil || from.ID == to.ID {
		return ErrInvalidShip
	}
	if from.CityID != to.CityID {
		return ErrNotCoLocated
	}
	if gold < 0 {
		return ErrInvalidQuantity
	}
	moved := 0
	for t, n := range goods {
		if n < 0 {
			return ErrInvalidQuantity
		}
		if _, ok := from.Cargo.Goods[t]; !ok {
			return ErrUnknownCargo
		}
		if _, ok := to.Cargo.Goods[t]; !ok {
			return ErrUnknownCargo
		}
		if from.Cargo.Goods[t] < n {
			return ErrInsufficientCargo
		}
		moved += n
	}
	if moved == 0 && gold == 0 {
		return ErrInvalidQuantity
	}
	if from.Cargo.Gold < gold {
		return ErrInsufficientGold
	}
	if to.Cargo.Used()+moved > to.Capacity {
		return ErrInsufficientSpace
	}

	for t, n := range goods {
		from.Cargo.Goods[t] -= n
		to.Cargo.Goods[t] += n
	}
	from.Cargo.Gold -= gold
	to.Cargo.Gold += gold
	return nil
}
