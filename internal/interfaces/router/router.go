package router

import (
	"context"

	"spending-backend/internal/aggregation"
	disastersvc "spending-backend/internal/application/disaster"
	"spending-backend/internal/config"
	"spending-backend/internal/health"
	"spending-backend/internal/infrastructure/cache"
	"spending-backend/internal/infrastructure/database"
	"spending-backend/internal/infrastructure/search"
	disasterhandler "spending-backend/internal/interfaces/handlers/disaster"
	healthhandler "spending-backend/internal/interfaces/handlers/health"
	"spending-backend/internal/middleware"
	"spending-backend/internal/submission"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stores are the optional backing services. Empty URLs leave them nil.
type Stores struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Search *search.Client
}

// OpenStores connects to every configured store. Nothing is pinged here.
func OpenStores(cfg *config.Config) (Stores, error) {
	var s Stores
	var err error
	if cfg.DatabaseURL != "" {
		if s.DB, err = database.Open(cfg.DatabaseURL); err != nil {
			return Stores{}, err
		}
	}
	if cfg.RedisURL != "" {
		if s.Redis, err = cache.Connect(cfg.RedisURL); err != nil {
			return Stores{}, err
		}
	}
	if cfg.ElasticsearchURL != "" {
		if s.Search, err = search.New(cfg.ElasticsearchURL); err != nil {
			return Stores{}, err
		}
	}
	return s, nil
}

// CreateApp opens the configured stores and builds the app on them.
func CreateApp(cfg *config.Config) (*fiber.App, Stores, error) {
	stores, err := OpenStores(cfg)
	if err != nil {
		return nil, Stores{}, err
	}
	return NewApp(cfg, stores), stores, nil
}

// NewApp builds the Fiber app with global middleware and routes. Disaster
// routes are mounted only when a database is available.
func NewApp(cfg *config.Config, stores Stores) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: cfg.AllowCrossSiteDev,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.HealthMarker(stores.Redis))
	app.Use(middleware.RouteLogger())

	deps := health.Dependencies{Redis: stores.Redis}
	if stores.DB != nil {
		deps.Database = &gormDBPinger{db: stores.DB}
	}
	if stores.Search != nil {
		deps.Search = stores.Search
	}
	hh := &healthhandler.Handlers{Deps: deps, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	if stores.DB == nil {
		log.Warn().Msg("no database configured, disaster routes disabled")
		return app
	}

	var searchBackend aggregation.Backend
	if stores.Search != nil {
		searchBackend = &aggregation.Search{Client: stores.Search, Index: cfg.AwardIndex}
	}
	svc := disastersvc.NewService(
		&submission.Resolver{DB: stores.DB, TTL: cfg.PeriodCacheTTL},
		&aggregation.Relational{DB: stores.DB},
		searchBackend,
	)
	dh := &disasterhandler.Handlers{Service: svc, Cache: cache.New(stores.Redis, cfg.ResponseCacheTTL)}
	dh.Register(app.Group("/api/v2/disaster"))

	return app
}
