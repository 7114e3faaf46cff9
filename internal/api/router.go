package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/catalog-backoffice/product-api/internal/api/handler"
	"github.com/catalog-backoffice/product-api/internal/api/middleware"
	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

// Dependencies are the services and adapters the HTTP layer is built from.
type Dependencies struct {
	AuthService    ports.AuthService
	RoleService    ports.RoleService
	ProductService ports.ProductService
	TokenParser    ports.TokenParser
	HealthChecks   map[string]handler.Pinger

	LoginRateRequests int
	LoginRateInterval time.Duration

	// MetricsRegisterer receives the HTTP request metrics. Nil means the
	// default registry, which is also what /metrics serves.
	MetricsRegisterer prometheus.Registerer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(middleware.RequestID())
	e.Use(middleware.Logging(deps.Logger))
	e.Use(echomiddleware.Recover())
	registerer := deps.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "catalog",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	roleHandler := handler.NewRoleHandler(deps.RoleService)
	productHandler := handler.NewProductHandler(deps.ProductService)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login, middleware.LoginRateLimiter(deps.LoginRateRequests, deps.LoginRateInterval))

	secured := api.Group("", middleware.Auth(deps.TokenParser))

	// --- Role membership (Admin) ---
	userRole := secured.Group("/userrole", middleware.RequireRole(domain.RoleAdmin))
	userRole.POST("", roleHandler.Assign)
	userRole.DELETE("", roleHandler.Revoke)

	// --- Catalog (Seller) ---
	products := secured.Group("/products", middleware.RequireRole(domain.RoleSeller))
	products.GET("", productHandler.List)
	products.POST("", productHandler.Create)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)

	return e
}
