package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargeledger/internal/clock"
	"chargeledger/internal/config"
	httpserver "chargeledger/internal/http"
	"chargeledger/internal/http/handlers"
	"chargeledger/internal/http/middleware"
	"chargeledger/internal/ledger"
	"chargeledger/internal/metrics"
	"chargeledger/internal/mirror"
	"chargeledger/internal/repository"
	"chargeledger/internal/service"
	"chargeledger/internal/storage"
	"chargeledger/internal/ws"
)

// App wires ledger service dependencies.
type App struct {
	server      *httpserver.Server
	feed        *ws.Feed
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := storage.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	mirrorStore := mirror.NewStore(redisClient, cfg.MirrorTTL())
	journal := repository.NewJournal(sqlDB)
	feed := ws.NewFeed(logger)
	collector := metrics.NewCollector()

	core := ledger.New(cfg.Ledger.Owner)
	svc := service.NewLedgerService(core, clock.System{}, logger,
		mirrorStore, journal, feed, collector)

	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(h).ServeHTTP
	}

	// Health, metrics and the event feed stay open; everything touching the
	// ledger requires an authenticated identity.
	routes := httpserver.Routes{
		ReservationCreate:   protected(handlers.NewReservationCreateHandler(svc)),
		ReservationsMe:      protected(handlers.NewReservationsMeHandler(svc)),
		StationAvailability: protected(handlers.NewStationAvailabilityHandler(svc)),
		SessionStart:        protected(handlers.NewSessionStartHandler(svc)),
		SessionStop:         protected(handlers.NewSessionStopHandler(svc)),
		SessionGet:          protected(handlers.NewSessionGetHandler(svc)),
		SessionsMe:          protected(handlers.NewSessionsMeHandler(svc)),
		PaymentDue:          protected(handlers.NewPaymentDueHandler(svc)),
		PaymentCreate:       protected(handlers.NewPaymentHandler(svc)),
		AdminWithdraw:       protected(handlers.NewWithdrawHandler(svc)),
		AdminBalance:        protected(handlers.NewBalanceHandler(svc)),
		Events:              feed.Handler(),
		Metrics:             collector.Handler(),
		Health:              handlers.NewHealthHandler(),
	}

	handler := middleware.RequestLogging(logger)(httpserver.NewRouter(routes))
	server := httpserver.NewServer(cfg.HTTPAddress(), handler, logger)

	return &App{
		server:      server,
		feed:        feed,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the event feed keepalive loop and the HTTP server, blocking
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.feed.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
