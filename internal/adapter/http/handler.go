package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"tradewinds/internal/app/logbook"
	"tradewinds/internal/app/observe"
	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/sailing"
	"tradewinds/internal/app/shipyard"
	"tradewinds/internal/app/status"
	"tradewinds/internal/app/trade"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const userIDHeader = "X-User-ID"
const idempotencyKeyHeader = "Idempotency-Key"

type Handler struct {
	SailUC     sailing.UseCase
	TradeUC    trade.UseCase
	ShipyardUC shipyard.UseCase
	ObserveUC  observe.UseCase
	StatusUC   status.UseCase
	LogbookUC  logbook.UseCase
	KPI        kpiSnapshotProvider
	Logger     *slog.Logger
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())
	api := s.Group("/api")
	api.POST("/ships", h.commission)
	api.GET("/ships", h.listShips)
	api.GET("/ships/:id", h.shipStatus)
	api.POST("/ships/:id/sail", h.sail)
	api.POST("/ships/:id/buy", h.buy)
	api.POST("/ships/:id/sell", h.sell)
	api.POST("/ships/:id/exchange", h.exchange)
	api.POST("/observe", h.observe)
	api.GET("/logs", h.logs)

	s.GET("/ops/kpi", h.kpi)
}

type sailRequest struct {
	IdempotencyKey string   `json:"idempotency_key"`
	Path           []string `json:"path"`
}

type orderRequest struct {
	CargoType string `json:"cargo_type"`
	Quantity  int    `json:"quantity"`
}

type exchangeRequest struct {
	ToShipID string         `json:"to_ship_id"`
	Goods    map[string]int `json:"goods"`
	Gold     int            `json:"gold"`
}

type commissionRequest struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	CityID string `json:"city_id"`
}

type observeRequest struct {
	Known  []string `json:"known"`
	Radius int      `json:"radius"`
}

func (h Handler) commission(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	var body commissionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ShipyardUC.Commission(c, shipyard.Request{
		UserID: userID,
		Name:   body.Name,
		Class:  body.Class,
		CityID: body.CityID,
	})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) listShips(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	resp, err := h.StatusUC.List(c, userID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) shipStatus(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	resp, err := h.StatusUC.Execute(c, status.Request{UserID: userID, ShipID: ctx.Param("id")})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) sail(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	var body sailRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	key := strings.TrimSpace(body.IdempotencyKey)
	if key == "" {
		key = strings.TrimSpace(string(ctx.GetHeader(idempotencyKeyHeader)))
	}
	resp, err := h.SailUC.Execute(c, sailing.Request{
		UserID:         userID,
		ShipID:         ctx.Param("id"),
		IdempotencyKey: key,
		Path:           body.Path,
	})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) buy(c context.Context, ctx *app.RequestContext) {
	h.order(c, ctx, h.TradeUC.Buy)
}

func (h Handler) sell(c context.Context, ctx *app.RequestContext) {
	h.order(c, ctx, h.TradeUC.Sell)
}

func (h Handler) order(c context.Context, ctx *app.RequestContext, run func(context.Context, trade.OrderRequest) (trade.OrderResponse, error)) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	var body orderRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := run(c, trade.OrderRequest{
		UserID:    userID,
		ShipID:    ctx.Param("id"),
		CargoType: body.CargoType,
		Quantity:  body.Quantity,
	})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) exchange(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	var body exchangeRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.TradeUC.Exchange(c, trade.ExchangeRequest{
		UserID:     userID,
		FromShipID: ctx.Param("id"),
		ToShipID:   body.ToShipID,
		Goods:      body.Goods,
		Gold:       body.Gold,
	})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) observe(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	var body observeRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.ObserveUC.Execute(c, observe.Request{UserID: userID, Known: body.Known, Radius: body.Radius})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) logs(c context.Context, ctx *app.RequestContext) {
	userID, err := requireUser(ctx)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	from, _ := strconv.ParseInt(string(ctx.Query("from")), 10, 64)
	to, _ := strconv.ParseInt(string(ctx.Query("to")), 10, 64)
	resp, err := h.LogbookUC.Execute(c, logbook.Request{
		UserID: userID,
		Limit:  limit,
		From:   from,
		To:     to,
	})
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

var ErrMissingUserIDHeader = errors.New("missing x-user-id header")

func requireUser(ctx *app.RequestContext) (string, error) {
	userID := strings.TrimSpace(string(ctx.GetHeader(userIDHeader)))
	if userID == "" {
		return "", ErrMissingUserIDHeader
	}
	return userID, nil
}

func (h Handler) writeError(ctx *app.RequestContext, err error) {
	if errorStatus(err) == consts.StatusInternalServerError {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("request failed", "path", string(ctx.Path()), "err", err)
	}
	writeError(ctx, err)
}

func errorStatus(err error) int {
	status, _ := classify(err)
	return status
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingUserIDHeader):
		return consts.StatusBadRequest, "missing_user_id"
	case errors.Is(err, sail.ErrRunawayComputation):
		return consts.StatusInternalServerError, "internal_error"
	case errors.Is(err, sail.ErrMalformedInput):
		return consts.StatusBadRequest, "malformed_input"
	case errors.Is(err, sailing.ErrInvalidRequest),
		errors.Is(err, trade.ErrInvalidRequest),
		errors.Is(err, shipyard.ErrInvalidRequest),
		errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest),
		errors.Is(err, logbook.ErrInvalidRequest),
		errors.Is(err, fleet.ErrInvalidQuantity),
		errors.Is(err, fleet.ErrInvalidShip):
		return consts.StatusBadRequest, "bad_request"
	case errors.Is(err, shipyard.ErrUnknownClass):
		return consts.StatusBadRequest, "unknown_class"
	case errors.Is(err, fleet.ErrUnknownCargo):
		return consts.StatusBadRequest, "unknown_cargo"
	case errors.Is(err, fleet.ErrNotOwner):
		return consts.StatusForbidden, "not_owner"
	case errors.Is(err, sail.ErrUnknownCity):
		return consts.StatusNotFound, "unknown_city"
	case errors.Is(err, ports.ErrNotFound):
		return consts.StatusNotFound, "not_found"
	case errors.Is(err, sail.ErrShipSunk):
		return consts.StatusConflict, "ship_sunk"
	case errors.Is(err, sail.ErrShipInTransit):
		return consts.StatusConflict, "ship_in_transit"
	case errors.Is(err, fleet.ErrNotDocked):
		return consts.StatusConflict, "not_docked"
	case errors.Is(err, fleet.ErrInsufficientSpace):
		return consts.StatusConflict, "insufficient_space"
	case errors.Is(err, fleet.ErrInsufficientGold):
		return consts.StatusConflict, "insufficient_gold"
	case errors.Is(err, fleet.ErrInsufficientCargo):
		return consts.StatusConflict, "insufficient_cargo"
	case errors.Is(err, fleet.ErrCityDoesNotTrade):
		return consts.StatusConflict, "city_does_not_trade"
	case errors.Is(err, fleet.ErrNotCoLocated):
		return consts.StatusConflict, "not_co_located"
	case errors.Is(err, fleet.ErrShipLimitReached):
		return consts.StatusConflict, "ship_limit_reached"
	case errors.Is(err, ports.ErrConflict):
		return consts.StatusConflict, "conflict"
	default:
		return consts.StatusInternalServerError, "internal_error"
	}
}

func writeError(ctx *app.RequestContext, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == consts.StatusInternalServerError {
		message = "internal error"
	}
	writeErrorBody(ctx, status, code, message)
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
