package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/appsec-lab/gateway/internal/api"
	"github.com/appsec-lab/gateway/internal/api/handler"
	"github.com/appsec-lab/gateway/internal/api/middleware"
	"github.com/appsec-lab/gateway/internal/core/ports"
	"github.com/appsec-lab/gateway/internal/core/service"
	"github.com/appsec-lab/gateway/internal/infrastructure/config"
	"github.com/appsec-lab/gateway/internal/infrastructure/db/memory"
	mongodir "github.com/appsec-lab/gateway/internal/infrastructure/db/mongo"
	redisstore "github.com/appsec-lab/gateway/internal/infrastructure/db/redis"
	"github.com/appsec-lab/gateway/internal/infrastructure/db/sqlite"
	"github.com/appsec-lab/gateway/internal/infrastructure/fixtures"
	"github.com/appsec-lab/gateway/pkg/logger"
)

const closeTimeout = 5 * time.Second

// App is a fully wired gateway. Close releases its backends in reverse
// order of acquisition.
type App struct {
	Router *echo.Echo

	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// build connects the configured backends, seeds them from the fixtures and
// returns the router. logger.Init must have been called.
func build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	log := logger.Component("wire")
	app := &App{}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	users, orders := fixtures.Users(), fixtures.Orders()
	accounts, txs := fixtures.Accounts(), fixtures.Transactions()
	if err := fixtures.Validate(users, orders, accounts, txs); err != nil {
		return nil, err
	}

	// --- Record store ---
	db, err := sqlite.Open(ctx, sqlite.Config{DSN: cfg.SQLite.DSN})
	if err != nil {
		return nil, err
	}
	app.onClose(func() { _ = db.Close() })

	if err := sqlite.Seed(ctx, db, accounts, txs, bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	store := sqlite.NewStore(db)
	readiness := map[string]handler.Pinger{"sqlite": store}

	// --- Directory ---
	var directory ports.Directory
	switch cfg.Directory.Backend {
	case config.BackendMongo:
		client, mdb, err := mongodir.Connect(ctx, mongodir.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		app.onClose(func() {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			_ = client.Disconnect(ctx)
		})

		dir := mongodir.NewDirectory(mdb)
		if err := dir.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := dir.Seed(ctx, users, orders); err != nil {
			return nil, err
		}
		directory = dir
		readiness["mongodb"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
	default:
		directory = memory.NewDirectory(users, orders)
	}

	// --- Sessions ---
	var sessions ports.SessionStore
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		app.onClose(func() { _ = client.Close() })

		sessions = redisstore.NewSessionStore(client, cfg.Session.TTL)
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	default:
		sessions = memory.NewSessionStore()
	}

	// --- Identity ---
	sessionResolver := middleware.SessionResolver{Sessions: sessions, Directory: directory}

	var (
		tokens   *service.TokenIssuer
		resolver middleware.Resolver
	)
	switch cfg.Auth.Mode {
	case config.AuthModeHeader:
		log.Warn().Msg("AUTH_MODE=header trusts the client-supplied X-User-Id header; lab baseline only")
		resolver = middleware.HeaderResolver{Directory: directory}
	case config.AuthModeToken:
		tokens = service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		resolver = middleware.TokenResolver{Verifier: tokens, Directory: directory}
	default:
		resolver = sessionResolver
	}

	loginLimit := middleware.PerMinute(cfg.Auth.LoginRatePerMinute)

	// --- Services ---
	documents, err := service.NewDocumentService(cfg.Files.BaseDir, cfg.Files.AllowList, logger.Component("documents"))
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}

	app.Router = api.NewRouter(api.Options{
		Log:             logger.Component("http"),
		AuthService:     service.NewAuthService(store, directory, sessions, tokens, logger.Component("auth")),
		OrderService:    service.NewOrderService(directory, logger.Component("orders")),
		BankService:     service.NewBankService(store, store, store, logger.Component("bank")),
		DocumentService: documents,
		Resolver:        resolver,
		SessionResolver: sessionResolver,
		LoginRateLimit:  &loginLimit,
		Cookie: handler.CookieOptions{
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
		Readiness:          readiness,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		EnableSwagger:      !cfg.IsProduction(),
		PublicURL:          cfg.PublicURL,
	})

	log.Info().
		Int("users", len(users)).
		Int("orders", len(orders)).
		Int("accounts", len(accounts)).
		Msg("fixtures loaded")

	return app, nil
}
