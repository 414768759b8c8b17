package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/arielspace/listing-board/docs"
	"github.com/arielspace/listing-board/internal/api/handler"
	"github.com/arielspace/listing-board/internal/api/middleware"
	"github.com/arielspace/listing-board/internal/core/domain"
	"github.com/arielspace/listing-board/internal/core/ports"
	"github.com/arielspace/listing-board/internal/core/session"
)

// Deps is everything the HTTP layer needs; main builds it once.
type Deps struct {
	Logger  zerolog.Logger
	DevMode bool

	JWTSecret      string
	AuthService    ports.AuthService
	ListingService ports.ListingService
	Sessions       middleware.SessionChecker
	SessionPolicy  session.Policy

	// Readiness maps a dependency name to its ping.
	Readiness map[string]handler.PingFunc

	LoginRateLimit float64
	LoginRateBurst int

	// Metrics replaces the default Prometheus registry when set.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Binder = handler.NewBinder()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.DevMode)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "listing_board",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.SessionPolicy)
	listingHandler := handler.NewListingHandler(d.ListingService)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	requireAuth := middleware.AuthWithConfig(middleware.AuthConfig{Secret: d.JWTSecret, Sessions: d.Sessions})
	peekAuth := middleware.AuthWithConfig(middleware.AuthConfig{Secret: d.JWTSecret, Sessions: d.Sessions, Passive: true})
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login, middleware.RateLimit(d.LoginRateLimit, d.LoginRateBurst, "login"))
	e.POST("/auth/logout", authHandler.Logout, requireAuth)
	e.GET("/auth/me", authHandler.Me, requireAuth)
	e.GET("/auth/session", authHandler.Session, peekAuth)
	e.POST("/auth/session/extend", authHandler.ExtendSession, requireAuth)

	// --- Listing routes ---
	e.GET("/listings", listingHandler.List)
	e.GET("/listings/:id", listingHandler.Get)
	e.POST("/listings", listingHandler.Create, requireAuth, adminOnly)
	e.PUT("/listings/:id", listingHandler.Update, requireAuth, adminOnly)
	e.DELETE("/listings/:id", listingHandler.Delete, requireAuth, adminOnly)
	e.GET("/admin/stats", listingHandler.Stats, requireAuth, adminOnly)

	// --- Health checks (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusTemporaryRedirect, "/swagger/index.html")
	})

	return e
}
