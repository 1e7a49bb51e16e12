package schedule

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/sail"
)

const ChannelShips = "ships"

// UserChannel carries events only the ship's owner should see, such as the
// tiles their lookout reveals.
func UserChannel(userID string) string {
	return "user:" + userID
}

type Timer interface {
	Stop() bool
}

// EventMessage is published when a scheduled event comes due.
type EventMessage struct {
	ShipID string `json:"ship_id"`
	Kind   string `json:"kind"`
	At     int64  `json:"at"`
	Tile   string `json:"tile"`
	Text   string `json:"text,omitempty"`
}

// Scheduler publishes each sail event at the instant it happens. Pending
// timers live only in memory and are lost on restart.
type Scheduler struct {
	Publisher ports.Publisher
	Logger    *slog.Logger
	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) Timer

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]Timer
	stopped bool
}

func (s *Scheduler) Schedule(userID, shipID string, events []sail.Event) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	after := s.AfterFunc
	if after == nil {
		after = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.pending == nil {
		s.pending = make(map[uint64]Timer)
	}
	for _, evt := range events {
		s.nextID++
		id := s.nextID
		channel, msg := route(userID, shipID, evt)
		delay := evt.At.Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.pending[id] = after(delay, func() { s.fire(id, channel, msg) })
	}
}

func (s *Scheduler) fire(id uint64, channel string, msg EventMessage) {
	s.mu.Lock()
	_, live := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if !live || s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(channel, msg.Kind, msg); err != nil {
		s.logger().Warn("publish sail event failed", "ship_id", msg.ShipID, "kind", msg.Kind, "err", err)
	}
}

// Pending is the number of events not yet published.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending event. Later Schedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func route(userID, shipID string, evt sail.Event) (string, EventMessage) {
	msg := EventMessage{
		ShipID: shipID,
		Kind:   strings.ToLower(string(evt.Kind)),
		At:     evt.At.UnixMilli(),
		Tile:   evt.Tile.String(),
		Text:   evt.Text,
	}
	if evt.Kind == sail.EventTileReveal {
		return UserChannel(userID), msg
	}
	return ChannelShips, msg
}
