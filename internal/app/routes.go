package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/authz"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/modules/admin"
	"github.com/panotour/core/internal/modules/auth/user"
	"github.com/panotour/core/internal/modules/engagement/comment"
	"github.com/panotour/core/internal/modules/engagement/notification"
	"github.com/panotour/core/internal/modules/engagement/save"
	"github.com/panotour/core/internal/modules/gateway"
	"github.com/panotour/core/internal/modules/tour/catalog"
	"github.com/panotour/core/internal/modules/tour/media"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/modules/tour/vote"
	"github.com/panotour/core/internal/pkg/mediastore"
	"github.com/panotour/core/internal/pkg/metrics"
	"github.com/panotour/core/internal/pkg/response"
	"github.com/panotour/core/internal/pkg/sequence"
)

const apiPrefix = "/api"

type services struct {
	users *user.Service
	media *media.Service
}

func (a *App) registerRoutes(enforcer *authz.Enforcer, store mediastore.Store) services {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth()
	optionalMW := middleware.OptionalAuth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/metrics", metrics.Handler())
	r.Static("/images", staticRoot(cfg, "images"))
	r.Static("/tiles", staticRoot(cfg, "tiles"))
	gateway.RegisterRoutes(r, a.hub)

	// Shared services
	ids := sequence.New(db)
	projectSvc := project.NewService(db, ids, a.pub, a.logger)
	ledger := vote.NewLedger(db, projectSvc, a.pub, a.logger)
	catalogSvc := catalog.NewService(projectSvc, ledger)
	userSvc := user.NewService(db, ids, store, cfg.TokenTTL, a.logger)
	mediaSvc := media.NewService(projectSvc, media.NewCommandProcessor(cfg.Media.Tiler, a.logger),
		cfg.StaticDir(), cfg.UploadDir(), a.logger)

	api := r.Group(apiPrefix)
	var counter middleware.WindowCounter
	if a.rc != nil {
		counter = a.rc
	}
	api.Use(middleware.RateLimit(counter, cfg.RateLimit.Max, cfg.RateLimit.Window, a.logger))
	var requests middleware.RequestLedger
	if a.rc != nil {
		requests = a.rc
	}
	api.Use(middleware.Idempotence(requests, a.logger,
		apiPrefix+"/notification/bookTour",
		apiPrefix+"/project/create",
		apiPrefix+"/comment/",
		apiPrefix+"/image/sliceImage360",
		apiPrefix+"/project/:projectId/convert",
	))

	started := time.Now()
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		response.OK(c, "", gin.H{"uptime": time.Since(started).Truncate(time.Second).String()})
	})

	// Identity
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)

	// Tours
	project.NewHandler(projectSvc, cfg.Project.EnforceOwnership).RegisterRoutes(api, authMW)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api, authMW, optionalMW)
	vote.NewHandler(ledger).RegisterRoutes(api, authMW, optionalMW)
	media.NewHandler(mediaSvc, cfg.Project.EnforceOwnership).RegisterRoutes(api, authMW)

	// Engagement
	comment.NewHandler(comment.NewService(db, projectSvc)).RegisterRoutes(api, authMW)
	save.NewHandler(save.NewService(db, projectSvc, catalogSvc)).RegisterRoutes(api, authMW)
	notification.NewHandler(notification.NewService(db, projectSvc, a.hub, a.pub, a.logger)).RegisterRoutes(api, authMW)

	// Moderation
	admin.NewHandler(admin.NewService(db, projectSvc, a.pub, a.logger), a.sched).
		RegisterRoutes(api, authMW, authz.Require(enforcer, userSvc, a.logger))

	return services{users: userSvc, media: mediaSvc}
}
