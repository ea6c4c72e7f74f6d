package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/appsec-lab/gateway/docs"
	"github.com/appsec-lab/gateway/internal/api/handler"
	"github.com/appsec-lab/gateway/internal/api/middleware"
	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

// Options carries everything the router wires into routes.
type Options struct {
	Log zerolog.Logger

	AuthService     ports.AuthService
	OrderService    ports.OrderService
	BankService     ports.BankService
	DocumentService ports.DocumentService

	// Resolver guards the order, user and status routes (AUTH_MODE).
	Resolver middleware.Resolver
	// SessionResolver guards the account routes whatever AUTH_MODE is.
	SessionResolver middleware.Resolver

	// LoginRateLimit limits POST /login per client. Nil disables it.
	LoginRateLimit *middleware.RateLimitConfig
	Cookie         handler.CookieOptions

	// Readiness lists the dependencies pinged by /health/ready.
	Readiness map[string]handler.Pinger

	CORSAllowedOrigins []string
	EnableSwagger      bool

	// PublicURL is the externally visible base URL listed in /sitemap.xml.
	PublicURL string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)
	// Clients are keyed by the socket address; forwarding headers are not trusted.
	e.IPExtractor = echo.ExtractIPDirect()

	// --- Pre-routing: headers on every response, including router 404/405 ---
	e.Pre(middleware.Secure())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Log))
	e.Use(echomiddleware.BodyLimit("64K"))
	if len(opts.CORSAllowedOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     opts.CORSAllowedOrigins,
			AllowMethods:     []string{echo.GET, echo.POST},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.UserIDHeader},
			AllowCredentials: true,
		}))
	}

	reg := prometheus.NewRegistry()
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "gateway",
		Subsystem:                 "http",
		Registerer:                reg,
		DoNotUseRequestPathFor404: true,
	}))

	// --- Handlers ---
	statusHandler := handler.NewStatusHandler(opts.PublicURL)
	authHandler := handler.NewAuthHandler(opts.AuthService, opts.Cookie)
	orderHandler := handler.NewOrderHandler(opts.OrderService)
	bankHandler := handler.NewBankHandler(opts.BankService)
	documentHandler := handler.NewDocumentHandler(opts.DocumentService)
	healthHandler := handler.NewHealthHandler(opts.Readiness, opts.Log)

	authenticated := middleware.Authenticate(opts.Resolver, opts.Log)
	sessionOnly := middleware.Authenticate(opts.SessionResolver, opts.Log)

	// --- Health, metrics, docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/robots.txt", statusHandler.Robots)
	e.GET("/sitemap.xml", statusHandler.Sitemap)
	if opts.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Public routes ---
	e.GET("/search", statusHandler.Search)
	e.POST("/read", documentHandler.Read)
	e.POST("/read-no-validate", documentHandler.ReadAllowListed)
	if opts.LoginRateLimit != nil {
		e.POST("/login", authHandler.Login, middleware.RateLimit(*opts.LoginRateLimit))
	} else {
		e.POST("/login", authHandler.Login)
	}

	// --- Identity per AUTH_MODE ---
	// Attached per route; an empty-prefix group would also answer unknown
	// paths with 401.
	e.GET("/", statusHandler.Status, authenticated)
	e.GET("/orders", orderHandler.ListOrders, authenticated)
	e.GET("/orders/:id", orderHandler.GetOrder, authenticated)
	e.GET("/users", orderHandler.ListUsers, authenticated, middleware.RequireRole("users", domain.RoleSupport))

	// --- Session-only account routes ---
	e.GET("/me", bankHandler.Me, sessionOnly)
	e.GET("/transactions", bankHandler.Transactions, sessionOnly)
	e.POST("/feedback", bankHandler.SubmitFeedback, sessionOnly)
	e.GET("/feedback", bankHandler.ListFeedback, sessionOnly)
	e.POST("/change-email", bankHandler.ChangeEmail, sessionOnly)

	return e
}

// requestLogger emits one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
