package httpadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tradewinds/internal/adapter/metrics/inmemory"
	"tradewinds/internal/adapter/repo/memory"
	"tradewinds/internal/adapter/world/static"
	"tradewinds/internal/app/logbook"
	"tradewinds/internal/app/observe"
	"tradewinds/internal/app/sailing"
	"tradewinds/internal/app/shipyard"
	"tradewinds/internal/app/status"
	"tradewinds/internal/app/trade"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route/param"
)

var testNow = time.UnixMilli(1_000_000)

// laneWorld is a single row: Port Royal, three ocean tiles, Tortuga.
func laneWorld(t *testing.T) *world.Snapshot {
	t.Helper()
	tiles := []world.Tile{
		{X: 0, Y: 0, Terrain: world.TerrainGrassland},
		{X: 1, Y: 0, Terrain: world.TerrainOcean},
		{X: 2, Y: 0, Terrain: world.TerrainOcean},
		{X: 3, Y: 0, Terrain: world.TerrainOcean},
		{X: 4, Y: 0, Terrain: world.TerrainGrassland},
	}
	m, err := world.NewMap(tiles)
	if err != nil {
		t.Fatalf("NewMap error: %v", err)
	}
	snap, err := world.NewSnapshot(m, []world.City{
		{ID: "port-royal", Name: "Port Royal", Tile: "0:0", Prices: []world.PriceCurve{{Type: "rum", Amplitude: 0, Midline: 10}}},
		{ID: "tortuga", Name: "Tortuga", Tile: "4:0", Prices: []world.PriceCurve{{Type: "rum", Amplitude: 0, Midline: 25}}},
	}, nil)
	if err != nil {
		t.Fatalf("NewSnapshot error: %v", err)
	}
	return snap
}

type fixture struct {
	handler Handler
	store   *memory.Store
	metrics *inmemory.Recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	ships := memory.NewShipRepo(store)
	logs := memory.NewLogRepo(store)
	provider := static.Provider{Snapshot: laneWorld(t)}
	metrics := inmemory.NewRecorder()
	now := func() time.Time { return testNow }

	ids := 0
	return fixture{
		store:   store,
		metrics: metrics,
		handler: Handler{
			SailUC: sailing.UseCase{
				TxManager:  tx,
				Ships:      ships,
				Executions: memory.NewSailExecutionRepo(store),
				Logs:       logs,
				World:      provider,
				Metrics:    metrics,
				Now:        now,
			},
			TradeUC: trade.UseCase{TxManager: tx, Ships: ships, Logs: logs, World: provider, Metrics: metrics, Now: now},
			ShipyardUC: shipyard.UseCase{
				TxManager: tx,
				Ships:     ships,
				Logs:      logs,
				World:     provider,
				Metrics:   metrics,
				Rules: shipyard.Rules{
					Classes:      map[string]fleet.Class{"sloop": {Name: "sloop", Speed: 1.0 / 1000, Capacity: 20}},
					CargoTypes:   []string{"rum"},
					StartingGold: 100,
				},
				NewID: func() string {
					ids++
					return "ship-" + string(rune('0'+ids))
				},
				Now: now,
			},
			ObserveUC: observe.UseCase{Ships: ships, World: provider, Now: now},
			StatusUC:  status.UseCase{Ships: ships, World: provider, Now: now},
			LogbookUC: logbook.UseCase{Logs: logs, Now: now},
			KPI:       metrics,
		},
	}
}

func request(userID, shipID, body string) *app.RequestContext {
	ctx := &app.RequestContext{}
	if userID != "" {
		ctx.Request.Header.Set(userIDHeader, userID)
	}
	if shipID != "" {
		ctx.Params = param.Params{{Key: "id", Value: shipID}}
	}
	if body != "" {
		ctx.Request.SetBody([]byte(body))
	}
	return ctx
}

func decodeBody(t *testing.T, ctx *app.RequestContext) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", ctx.Response.Body(), err)
	}
	return out
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	body := decodeBody(t, ctx)
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (f fixture) commission(t *testing.T, userID string) string {
	t.Helper()
	ctx := request(userID, "", `{"name":"Gull","class":"sloop","city_id":"port-royal"}`)
	f.handler.commission(context.Background(), ctx)
	if ctx.Response.StatusCode() != 201 {
		t.Fatalf("commission status %d body %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	ship, _ := decodeBody(t, ctx)["ship"].(map[string]any)
	id, _ := ship["id"].(string)
	if id == "" {
		t.Fatalf("commission returned no ship id: %s", ctx.Response.Body())
	}
	return id
}
