package logbook

import "tradewinds/internal/domain/fleet"

// Request bounds are unix milliseconds. Zero leaves that side open.
type Request struct {
	UserID string
	Limit  int
	From   int64
	To     int64
}

type Response struct {
	Entries []fleet.LogEntry `json:"entries"`
}
