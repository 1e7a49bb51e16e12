package logbook

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradewinds/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid logbook request")

const (
	defaultLimit = 50
	maxLimit     = 500
)

type UseCase struct {
	Logs ports.LogRepository
	Now  func() time.Time
}

// Execute lists the user's log rows newest first. Rows stamped after now
// describe events that have not happened yet (a ship still on its way to a
// reef) and stay hidden until their time comes.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Limit < 0 || req.From < 0 || req.To < 0 {
		return Response{}, ErrInvalidRequest
	}
	if req.To > 0 && req.From > req.To {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	now := time.Now()
	if u.Now != nil {
		now = u.Now()
	}
	q := ports.LogQuery{UserID: req.UserID, Limit: limit, To: now}
	if req.From > 0 {
		q.From = time.UnixMilli(req.From)
	}
	if req.To > 0 && req.To < now.UnixMilli() {
		q.To = time.UnixMilli(req.To)
	}

	entries, err := u.Logs.ListByUser(ctx, q)
	if err != nil {
		return Response{}, err
	}
	return Response{Entries: entries}, nil
}
