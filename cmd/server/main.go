package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	schema "tradewinds/db"
	httpadapter "tradewinds/internal/adapter/http"
	metricsinmem "tradewinds/internal/adapter/metrics/inmemory"
	"tradewinds/internal/adapter/realtime/ws"
	gormrepo "tradewinds/internal/adapter/repo/gorm"
	"tradewinds/internal/adapter/repo/memory"
	worldruntime "tradewinds/internal/adapter/world/runtime"
	worldsqlite "tradewinds/internal/adapter/world/sqlite"
	"tradewinds/internal/app/logbook"
	"tradewinds/internal/app/observe"
	"tradewinds/internal/app/ports"
	"tradewinds/internal/app/sailing"
	"tradewinds/internal/app/schedule"
	"tradewinds/internal/app/shipyard"
	"tradewinds/internal/app/status"
	"tradewinds/internal/app/trade"
	"tradewinds/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

type repos struct {
	tx         ports.TxManager
	ships      ports.ShipRepository
	executions ports.SailExecutionRepository
	logs       ports.LogRepository
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.ServerFromEnv()
	worldCfg, err := config.LoadWorld(cfg.WorldConfig)
	if err != nil {
		logger.Error("load world config", "path", cfg.WorldConfig, "err", err)
		os.Exit(1)
	}
	r, err := buildRepos(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("build repositories", "err", err)
		os.Exit(1)
	}
	worldProvider, closeWorld, err := buildWorldProvider(cfg, worldCfg, logger)
	if err != nil {
		logger.Error("build world provider", "err", err)
		os.Exit(1)
	}
	defer closeWorld()
	// Generate or load up front so the first request does not pay for it.
	if _, err := worldProvider.World(context.Background()); err != nil {
		logger.Error("prepare world", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	scheduler := &schedule.Scheduler{Publisher: hub, Logger: logger, Now: time.Now}
	defer scheduler.Stop()

	kpiRecorder := metricsinmem.NewRecorder()
	h := httpadapter.Handler{
		SailUC: sailing.UseCase{
			TxManager:  r.tx,
			Ships:      r.ships,
			Executions: r.executions,
			Logs:       r.logs,
			World:      worldProvider,
			Publisher:  hub,
			Scheduler:  scheduler,
			Metrics:    kpiRecorder,
			Logger:     logger,
			Now:        time.Now,
		},
		TradeUC: trade.UseCase{
			TxManager: r.tx,
			Ships:     r.ships,
			Logs:      r.logs,
			World:     worldProvider,
			Metrics:   kpiRecorder,
			Now:       time.Now,
		},
		ShipyardUC: shipyard.UseCase{
			TxManager: r.tx,
			Ships:     r.ships,
			Logs:      r.logs,
			World:     worldProvider,
			Metrics:   kpiRecorder,
			Rules:     shipyardRules(worldCfg),
			Now:       time.Now,
		},
		ObserveUC: observe.UseCase{Ships: r.ships, World: worldProvider, Radius: worldCfg.Rules.ViewRadius, Now: time.Now},
		StatusUC:  status.UseCase{Ships: r.ships, World: worldProvider, Now: time.Now},
		LogbookUC: logbook.UseCase{Logs: r.logs, Now: time.Now},
		KPI:       kpiRecorder,
		Logger:    logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	wsServer := &http.Server{Addr: cfg.WSAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("websocket listening", "addr", cfg.WSAddr)
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("websocket server", "err", err)
		}
	}()

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)
	logger.Info("tradewinds server listening", "addr", cfg.HTTPAddr, "postgres", cfg.DBDSN != "")
	s.Spin()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	_ = wsServer.Shutdown(shutdownCtx)
}

// buildRepos uses postgres when a DSN is configured and process memory
// otherwise.
func buildRepos(ctx context.Context, cfg config.Server, logger *slog.Logger) (repos, error) {
	if cfg.DBDSN == "" {
		logger.Warn("TRADEWINDS_DB_DSN not set, ships are kept in memory")
		store := memory.NewStore()
		return repos{
			tx:         memory.NewTxManager(store),
			ships:      memory.NewShipRepo(store),
			executions: memory.NewSailExecutionRepo(store),
			logs:       memory.NewLogRepo(store),
		}, nil
	}
	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		return repos{}, err
	}
	if err := gormrepo.ApplyMigrations(ctx, db, migrationsFS(cfg)); err != nil {
		return repos{}, err
	}
	return repos{
		tx:         gormrepo.NewTxManager(db),
		ships:      gormrepo.NewShipRepo(db),
		executions: gormrepo.NewSailExecutionRepo(db),
		logs:       gormrepo.NewLogRepo(db),
	}, nil
}

// migrationsFS prefers an on-disk override and falls back to the schema
// compiled into the binary.
func migrationsFS(cfg config.Server) fs.FS {
	if cfg.MigrationsDir != "" {
		return os.DirFS(cfg.MigrationsDir)
	}
	return schema.Migrations()
}

// buildWorldProvider generates the world from the YAML definition, keeping
// it in SQLite when TRADEWINDS_WORLD_DB names a file.
func buildWorldProvider(cfg config.Server, worldCfg config.World, logger *slog.Logger) (*worldruntime.Provider, func(), error) {
	rc := worldruntime.Config{Build: worldCfg.Build, Logger: logger}
	closer := func() {}
	if cfg.WorldDB != "" {
		store, err := worldsqlite.Open(cfg.WorldDB)
		if err != nil {
			return nil, nil, err
		}
		rc.Store = store
		closer = func() { _ = store.Close() }
	}
	return worldruntime.NewProvider(rc), closer, nil
}

func shipyardRules(w config.World) shipyard.Rules {
	return shipyard.Rules{
		Classes:          w.ClassMap(),
		CargoTypes:       append([]string(nil), w.CargoTypes...),
		StartingGold:     w.Rules.StartingGold,
		MaxShipsPerOwner: w.Rules.MaxShipsPerOwner,
	}
}
