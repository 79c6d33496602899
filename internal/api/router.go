package api

import (
	"net"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sweetshop/sweet-api/docs" // swagger docs
	"github.com/sweetshop/sweet-api/internal/api/handler"
	"github.com/sweetshop/sweet-api/internal/api/middleware"
	"github.com/sweetshop/sweet-api/internal/core/domain"
	"github.com/sweetshop/sweet-api/internal/core/ports"
)

// Deps holds everything the router needs. Nil optional fields disable the
// matching feature.
type Deps struct {
	Auth   ports.AuthService
	Sweets ports.SweetService
	Tokens middleware.TokenParser
	Logger zerolog.Logger

	// Prefix is the mount point of the API routes, "/api" when empty.
	Prefix      string
	CORSOrigins []string

	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty means
	// the client address is always the socket peer.
	TrustedProxies []*net.IPNet

	// RateLimiter guards every route under Prefix. Optional.
	RateLimiter echo.MiddlewareFunc

	// Registerer and Gatherer back the HTTP metrics and /metrics. Optional.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Checks are the readiness probes keyed by dependency name.
	Checks map[string]handler.PingFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.IPExtractor = ipExtractor(d.TrustedProxies)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(d.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	if d.Registerer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "sweetshop",
			Subsystem:  "http",
			Registerer: d.Registerer,
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	// --- Operational routes (no auth required) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/", health.Welcome)
	e.GET("/health", health.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness)     // readiness – are dependencies up?
	e.GET("/swagger/*", echoSwagger.WrapHandler) // swagger UI
	if d.Gatherer != nil {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	}

	api := e.Group(apiPrefix(d.Prefix))
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter)
	}
	api.GET("/", health.APIStatus)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	authMiddleware := middleware.Auth(d.Tokens)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Sweet routes: every route is authenticated, then checked against the role table ---
	sweetHandler := handler.NewSweetHandler(d.Sweets)
	sweets := api.Group("/sweets", authMiddleware)
	allow := middleware.Authorize

	sweets.POST("", sweetHandler.Create, allow(domain.OpCreateSweet))
	sweets.GET("", sweetHandler.List, allow(domain.OpListSweets))
	sweets.GET("/search", sweetHandler.Search, allow(domain.OpSearchSweets))
	sweets.GET("/:id", sweetHandler.Get, allow(domain.OpGetSweet))
	sweets.PUT("/:id", sweetHandler.Update, allow(domain.OpUpdateSweet))
	sweets.DELETE("/:id", sweetHandler.Delete, allow(domain.OpDeleteSweet))
	sweets.POST("/:id/purchase", sweetHandler.Purchase, allow(domain.OpPurchaseSweet))
	sweets.POST("/:id/restock", sweetHandler.Restock, allow(domain.OpRestockSweet))

	return e
}

// ipExtractor decides what c.RealIP returns, and with it the rate-limit key.
func ipExtractor(proxies []*net.IPNet) echo.IPExtractor {
	if len(proxies) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range proxies {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func apiPrefix(p string) string {
	p = "/" + strings.Trim(strings.TrimSpace(p), "/")
	if p == "/" {
		return "/api"
	}
	return p
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
