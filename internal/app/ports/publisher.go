package ports

import "tradewinds/internal/domain/sail"

// Publisher fans a message out to every subscriber of channel. Delivery is
// best effort.
type Publisher interface {
	Publish(channel, msgType string, payload any) error
}

// EventScheduler delivers a ship's future events when their time comes.
type EventScheduler interface {
	Schedule(userID, shipID string, events []sail.Event)
}
