// Package server assembles the sweet shop API from configuration: storage
// connections, services, the echo router and the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/sweetshop/sweet-api/docs"
	"github.com/sweetshop/sweet-api/internal/api"
	"github.com/sweetshop/sweet-api/internal/api/handler"
	"github.com/sweetshop/sweet-api/internal/api/middleware"
	"github.com/sweetshop/sweet-api/internal/core/service"
	"github.com/sweetshop/sweet-api/internal/infrastructure/config"
	"github.com/sweetshop/sweet-api/internal/infrastructure/db/mongo"
	"github.com/sweetshop/sweet-api/internal/infrastructure/db/redis"
	"github.com/sweetshop/sweet-api/internal/infrastructure/token"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and its storage connections.
type Server struct {
	httpServer *http.Server
	echo       *echo.Echo
	mongo      *gomongo.Client
	redis      *goredis.Client
	log        zerolog.Logger
}

// New connects to MongoDB (required) and Redis (optional), bootstraps the
// admin account when configured and builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	proxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return nil, err
	}

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	s := &Server{mongo: mongoClient, log: log}

	checks := map[string]handler.PingFunc{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	var limiter echo.MiddlewareFunc
	if cfg.RateLimit.Max > 0 {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiter")
			limiter = middleware.MemoryRateLimit(cfg.RateLimit.Max, cfg.RateLimit.Window)
		} else {
			s.redis = rdb
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			limiter = middleware.RateLimit(redis.NewWindowLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window), log)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
		}
	}

	tokens := token.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(mongo.NewUserRepository(db), tokens, log.With().Str("component", "auth").Logger())
	sweetService := service.NewSweetService(mongo.NewSweetRepository(db), log.With().Str("component", "inventory").Logger())

	if cfg.HasAdmin() {
		admin, created, err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			s.closeStores()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info().Str("email", admin.Email).Bool("created", created).Msg("admin account ready")
	}

	docs.SwaggerInfo.BasePath = cfg.APIPrefix

	s.echo = api.NewRouter(api.Deps{
		Auth:           authService,
		Sweets:         sweetService,
		Tokens:         tokens,
		Logger:         log,
		Prefix:         cfg.APIPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: proxies,
		RateLimiter:    limiter,
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
		Checks:         checks,
	})

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.echo,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.closeStores()
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	return s.Shutdown()
}

// Shutdown stops accepting connections, waits for in-flight requests and
// closes the storage clients.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.closeStores()
	return err
}

func (s *Server) closeStores() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			s.log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}
}
