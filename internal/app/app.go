package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/authz"
	"github.com/panotour/core/internal/config"
	"github.com/panotour/core/internal/database"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/modules/gateway"
	pkgcron "github.com/panotour/core/internal/pkg/cron"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/jwt"
	"github.com/panotour/core/internal/pkg/mediastore"
	"github.com/panotour/core/internal/pkg/metrics"
	pkgredis "github.com/panotour/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	hub    *gateway.Hub
	pub    events.Publisher
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// Deps are the connected backends an App is assembled from. Redis is
// optional.
type Deps struct {
	DB        *gorm.DB
	Redis     *pkgredis.Client
	Publisher events.Publisher
	Media     mediastore.Store
}

// New initializes the application: config → DB → Redis → Kafka → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	store, err := mediastore.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.Kafka.Enable {
		pub = events.NewKafkaPublisher(cfg.Kafka, logger)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return Build(logger, cfg, Deps{DB: db, Redis: rc, Publisher: pub, Media: store})
}

// Build wires services and routes over already connected backends.
func Build(logger *zap.Logger, cfg *config.AppConfig, deps Deps) (*App, error) {
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.Media == nil {
		deps.Media = mediastore.NewLocal(cfg.StaticDir())
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware())
	router.Use(newCORS(cfg))

	hub := gateway.NewHub(deps.Redis, logger, validateToken)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	a := &App{
		cfg:    cfg,
		router: router,
		db:     deps.DB,
		rc:     deps.Redis,
		hub:    hub,
		pub:    deps.Publisher,
		logger: logger,
		cancel: cancel,
		sched:  pkgcron.New(logger.Named("CronService")),
	}
	svcs := a.registerRoutes(enforcer, deps.Media)

	if err := svcs.users.PromoteAdmins(ctx, cfg.AdminAccounts); err != nil {
		logger.Warn("promote admin accounts failed", zap.Error(err))
	}
	registerCronJobs(a.sched, svcs.media, cfg, logger)
	go a.sched.Start(ctx)

	return a, nil
}

func validateToken(token string) (int64, bool) {
	claims, err := jwt.Parse(token)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background work and releases backends.
func (a *App) Shutdown() {
	a.cancel()
	if err := a.pub.Close(); err != nil {
		a.logger.Warn("close event publisher", zap.Error(err))
	}
	if a.rc != nil {
		_ = a.rc.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func staticRoot(cfg *config.AppConfig, sub string) string {
	return filepath.Join(cfg.StaticDir(), sub)
}
