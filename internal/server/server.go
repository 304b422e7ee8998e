// Package server wires configuration, storage, Redis, the message broker
// and the HTTP stack into a runnable service.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/theater-service/internal/config"
	"github.com/iliyamo/theater-service/internal/database"
	"github.com/iliyamo/theater-service/internal/handler"
	"github.com/iliyamo/theater-service/internal/metrics"
	"github.com/iliyamo/theater-service/internal/middleware"
	"github.com/iliyamo/theater-service/internal/queue"
	"github.com/iliyamo/theater-service/internal/repository"
	"github.com/iliyamo/theater-service/internal/router"
	"github.com/iliyamo/theater-service/internal/service"
)

// Deps are the collaborators of the HTTP stack.  Nil DB, Redis, Metrics
// and Publisher are allowed and switch the matching feature off.
type Deps struct {
	Stores    repository.StoreFactory
	DB        *sql.DB
	Redis     *redis.Client
	Publisher service.Publisher
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	BodyLimit string
}

// NewEcho builds the Echo instance with global middleware and all routes.
func NewEcho(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(
		middleware.RequestID(),
		middleware.ContextLogger(d.Logger),
		middleware.RequestLogger(),
		echomw.Recover(),
		echomw.Secure(),
	)
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
	}
	if d.BodyLimit != "" {
		e.Use(echomw.BodyLimit(d.BodyLimit))
	}

	router.RegisterRoutes(e, &handler.ReadinessHandler{DB: d.DB, Redis: d.Redis}, d.Metrics)
	router.RegisterTheater(e,
		handler.NewTheaterHandler(d.Stores, d.Publisher, d.Metrics),
		middleware.NewTokenBucket(d.RateLimit, d.Redis),
		middleware.NewRedisCache(d.Cache, d.Redis),
	)
	return e
}

// Server owns the process-level resources.
type Server struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *sql.DB
	Redis  *redis.Client
	Echo   *echo.Echo

	stopConsumer context.CancelFunc
	consumerDone chan struct{}
}

// New opens the configured store, connects Redis (optional) and builds the
// HTTP stack.
func New(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	s := &Server{Config: cfg, Logger: log}

	var stores repository.StoreFactory
	if cfg.DB.Driver == "memory" {
		log.Warn().Msg("using in-memory theater store; data is lost on restart")
		stores = repository.NewMemoryStoreFactory(repository.NewMemoryDB())
	} else {
		db, err := database.Open(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if cfg.DB.AutoSchema {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = database.EnsureSchema(ctx, db, cfg.DB.Driver)
			cancel()
			if err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		s.DB = db
		stores = repository.NewSQLStoreFactory(db)
	}

	s.Redis = config.NewRedisClient(cfg.Redis)
	if cfg.Redis.Enabled && s.Redis == nil {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; caching and rate limiting disabled")
	}

	var pub service.Publisher = service.NopPublisher{}
	if cfg.AMQP.Enabled {
		pub = &service.AMQPPublisher{URL: cfg.AMQP.URL, Queue: cfg.AMQP.Queue, Log: log}
	}

	s.Echo = NewEcho(Deps{
		Stores:    stores,
		DB:        s.DB,
		Redis:     s.Redis,
		Publisher: pub,
		Metrics:   metrics.New(),
		Logger:    log,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		BodyLimit: cfg.App.BodyLimit,
	})
	return s, nil
}

// Start launches the event consumer when configured and serves HTTP until
// Shutdown.  It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if s.Config.AMQP.Enabled && s.Config.AMQP.Consumer {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopConsumer = cancel
		s.consumerDone = make(chan struct{})
		c := &queue.Consumer{URL: s.Config.AMQP.URL, Queue: s.Config.AMQP.Queue, LogDir: s.Config.AMQP.LogDir, Log: s.Logger}
		go func() {
			defer close(s.consumerDone)
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.Logger.Error().Err(err).Msg("theater consumer stopped")
			}
		}()
	}

	s.Logger.Info().Str("port", s.Config.App.Port).Str("env", s.Config.App.Env).Msg("starting server")
	if err := s.Echo.Start(":" + s.Config.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the consumer, Redis and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.Echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.stopConsumer != nil {
		s.stopConsumer()
		select {
		case <-s.consumerDone:
		case <-ctx.Done():
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}
