package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"client-manager-api/config"
	"client-manager-api/internal/application/ports"
	"client-manager-api/internal/application/services"
	domain "client-manager-api/internal/domain/client"
	"client-manager-api/internal/infrastructure/cache"
	"client-manager-api/internal/infrastructure/db/postgres"
	"client-manager-api/internal/infrastructure/db/postgres/client"
	"client-manager-api/internal/infrastructure/metrics"
	"client-manager-api/internal/infrastructure/mq"
	"client-manager-api/internal/interface/api/rest"
	"client-manager-api/internal/interface/api/rest/middleware"
	"client-manager-api/internal/interface/api/rest/validator"
	"client-manager-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	cache      *cache.Repository
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	audit      ports.AuditPublisher
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
}

func newLogger(env string) (*zap.Logger, error) {
	switch env {
	case gin.ReleaseMode, "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}

func NewApp(ctx context.Context) (*App, error) {
	// config
	envErr := godotenv.Load(".env")
	cfg := config.Load()

	// logger
	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	if envErr != nil {
		logger.Info(".env file not loaded, using process environment", zap.Error(envErr))
	}

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(rest.RecoveryHandler(logger))
	r.Use(middleware.RequestLogGin(logger, mCounter))
	r.NoRoute(rest.NoRouteHandler)

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// db
	dbDsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}
	dbPool, err := postgres.New(ctx, logger, dbDsn, cfg.DB.MaxConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err = postgres.EnsureSchema(ctx, dbPool); err != nil {
		dbPool.Close()
		logger.Fatal("failed to create schema", zap.Error(err))
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		db:       dbPool,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		audit:    mq.NewLogSink(logger),
	}

	if !cfg.MQEnabled() {
		logger.Info("RABBITMQ_HOST not set, audit events go to the log")
		return app, nil
	}

	// rabbitMQ
	rabbitDsn, err := cfg.AMQPDSN()
	if err != nil {
		logger.Fatal("RabbitMQ config error", zap.Error(err))
	}
	rbMQ := mq.New(cfg.MQ, logger)
	if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
		logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = rbMQ.Init(); err != nil {
		logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}
	// rmqConsumer
	rmqConsumer := rmqconsumer.New(cfg.MQ, logger, mq.Operations)
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}

	app.audit = rbMQ
	app.mq = rbMQ
	app.mqConsumer = rmqConsumer

	return app, nil
}

func (a *App) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})
	}

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// repos
	var clientRepo domain.Repository = client.NewRepository(a.db, a.cfg.Clients.DefaultPerPage, a.cfg.Clients.MaxPerPage)
	if a.cfg.Cache.MaxItems > 0 {
		cached, err := cache.New(clientRepo, a.cfg.Cache.MaxItems, a.cfg.Cache.TTL, a.logger)
		if err != nil {
			a.logger.Fatal("failed to create client cache", zap.Error(err))
		}
		a.cache = cached
		clientRepo = cached
	}

	// services
	clientValidator := validator.NewClientValidator(a.cfg.Clients.EmailCaseInsensitive)
	clientService := services.NewClientService(clientRepo, clientValidator, a.audit, a.mCounter)

	// controllers
	rest.NewClientController(a.router, clientService, a.logger, a.cfg.Clients)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) {
		if err := a.db.Ping(c.Request.Context()); err != nil {
			a.logger.Error("health check failed", zap.Error(err))
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

func (a *App) Logger() *zap.Logger { return a.logger }
