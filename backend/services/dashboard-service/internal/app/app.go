package app

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"energyprofile/backend/libs/db"
	libredis "energyprofile/backend/libs/redis"
	"energyprofile/backend/services/dashboard-service/internal/config"
	"energyprofile/backend/services/dashboard-service/internal/dataset"
	httpserver "energyprofile/backend/services/dashboard-service/internal/http"
	"energyprofile/backend/services/dashboard-service/internal/http/handlers"
	"energyprofile/backend/services/dashboard-service/internal/http/middleware"
	"energyprofile/backend/services/dashboard-service/internal/loader"
	redisstore "energyprofile/backend/services/dashboard-service/internal/redis"
	"energyprofile/backend/services/dashboard-service/internal/repository"
	"energyprofile/backend/services/dashboard-service/internal/service"
	"energyprofile/backend/services/dashboard-service/internal/ws"
)

const (
	connectTimeout = 5 * time.Second
	sideTimeout    = 10 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// App wires dashboard service dependencies.
type App struct {
	cfg      *config.Config
	server   *httpserver.Server
	store    *dataset.Store
	loader   *loader.Loader
	manager  *ws.Manager
	notifier *redisstore.DatasetNotifier
	archive  *repository.ReadingArchive
	db       *sql.DB
	redis    *goredis.Client
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs application components. Redis and Postgres are optional and
// only connected when configured.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	location, err := cfg.DataLocation()
	if err != nil {
		return nil, err
	}

	slabs := cfg.Tariff.Slabs
	if len(slabs) == 0 {
		slabs = service.DefaultTariff()
	}
	tariffService, err := service.NewTariffService(slabs, cfg.Tariff.Currency)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:     cfg,
		store:   dataset.NewStore(cfg.Data.Source),
		manager: ws.NewManager(cfg.PingInterval()),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	a.loader = loader.New(
		loader.NewSourceOpener(&http.Client{Timeout: cfg.Data.Timeout}),
		loader.Options{Location: location, Timeout: cfg.Data.Timeout},
		logger,
	)

	if err := a.connectSideStores(); err != nil {
		a.Close()
		return nil, err
	}

	var auth func(http.Handler) http.Handler
	if cfg.AuthEnabled() {
		tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
		if err != nil {
			a.Close()
			return nil, err
		}
		auth = middleware.AuthMiddleware(tokens)
	}

	dashboardService := service.NewDashboardService(a.store, tariffService, logger)
	wsServer := ws.NewServer(ctx, a.manager, dashboardService, wsWriteTimeout, logger)

	a.store.Subscribe(func(snap dataset.Snapshot) {
		status := service.StatusOf(snap)
		wsServer.Publish(status)
		a.afterTransition(snap, status)
	})

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Dashboard: handlers.NewDashboardHandlers(dashboardService, logger),
		Health:    handlers.NewHealthHandler(),
		LiveFeed:  wsServer.HandleWS,
	}, auth)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger, middleware.RequestLogger(logger))

	return a, nil
}

func (a *App) connectSideStores() error {
	ctx, cancel := context.WithTimeout(a.ctx, connectTimeout)
	defer cancel()

	if dsn := a.cfg.Archive.DSN; dsn != "" {
		sqlDB, err := db.NewPostgresDB(ctx, dsn)
		if err != nil {
			return err
		}
		a.db = sqlDB
		a.archive = repository.NewReadingArchive(sqlDB)
		if err := a.archive.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	if addr := a.cfg.Redis.Addr; addr != "" {
		client, err := libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		a.redis = client
		a.notifier = redisstore.NewDatasetNotifier(client, a.cfg.Redis.Prefix, a.cfg.StatusTTL())
	}
	return nil
}

// afterTransition mirrors a settled dataset into the optional side stores.
// Failures there are logged and never affect the dataset itself.
func (a *App) afterTransition(snap dataset.Snapshot, status service.Status) {
	if a.notifier != nil {
		a.goSide(func(ctx context.Context) {
			a.notify(ctx, status)
		})
	}
	if a.archive != nil && snap.State == dataset.StateReady {
		a.goSide(func(ctx context.Context) {
			stored, err := a.archive.Store(ctx, snap.Source, snap.Readings)
			if err != nil {
				a.logger.Warn("failed to archive readings", zap.Error(err))
				return
			}
			archived, err := a.archive.Count(ctx, snap.Source)
			if err != nil {
				a.logger.Warn("failed to count archived readings", zap.Error(err))
			}
			a.logger.Info("readings archived",
				zap.Int64("inserted", stored),
				zap.Int("loaded", len(snap.Readings)),
				zap.Int64("archived", archived),
			)
		})
	}
}

func (a *App) notify(ctx context.Context, status service.Status) {
	if err := a.notifier.Notify(ctx, status); err != nil {
		a.logger.Warn("failed to publish dataset status", zap.Error(err))
	}
}

func (a *App) goSide(fn func(ctx context.Context)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// Run starts the background load, the websocket keepalive and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-a.ctx.Done():
		}
		a.cancel()
	}()

	// The loading status is written before the load starts so it can never
	// overwrite the terminal one.
	if a.notifier != nil {
		notifyCtx, notifyCancel := context.WithTimeout(ctx, sideTimeout)
		a.notify(notifyCtx, service.StatusOf(a.store.Snapshot()))
		notifyCancel()
	}

	go a.manager.Start(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.loadDataset(ctx)
	}()

	return a.server.Run(ctx)
}

func (a *App) loadDataset(ctx context.Context) {
	readings, err := a.loader.Load(ctx, a.cfg.Data.Source)
	if err != nil {
		a.logger.Error("energy data load failed", zap.String("source", a.cfg.Data.Source), zap.Error(err))
		_ = a.store.Fail(err)
		return
	}
	_ = a.store.Complete(readings)
}

// Close releases resources.
func (a *App) Close() {
	a.cancel()
	a.wg.Wait()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
