package http

import (
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "profilehub/docs"
	appsvc "profilehub/internal/app"
	"profilehub/internal/bootstrap"
	"profilehub/internal/config"
	"profilehub/internal/pkg/password"
	"profilehub/internal/repository"
	"profilehub/internal/transport/http/handler"
	"profilehub/internal/transport/http/middleware"
)

type routerDeps struct {
	cfg       *config.Config
	logger    *slog.Logger
	users     repository.UserRepository
	publisher appsvc.EventPublisher
	avatars   appsvc.AvatarSource
	hasher    appsvc.PasswordHasher
	broker    handler.BrokerConn
	startedAt time.Time
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)

	deps := routerDeps{
		cfg:       app.Config,
		logger:    app.Logger,
		users:     app.Users,
		publisher: app.Publisher,
		avatars:   app.Avatars,
		hasher:    password.NewBcryptHasher(password.DefaultCost),
		startedAt: app.StartedAt,
	}
	if app.MQConn != nil {
		deps.broker = app.MQConn
	}
	return newRouter(deps)
}

func newRouter(deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(deps.logger), gin.Recovery(), middleware.CORS())

	authService := appsvc.NewAuthService(
		deps.users,
		deps.hasher,
		deps.avatars,
		deps.publisher,
		appsvc.TokenConfig{
			Secret: deps.cfg.Auth.JWTSecret,
			TTL:    time.Duration(deps.cfg.Auth.JWTExpireMinute) * time.Minute,
		},
		deps.logger,
	)
	profileService := appsvc.NewProfileService(deps.users, deps.publisher, deps.logger)

	healthHandler := handler.NewHealthHandler(deps.cfg.App.Name, deps.cfg.App.Env, deps.startedAt, deps.users, deps.broker)
	authHandler := handler.NewAuthHandler(authService, deps.logger)
	profileHandler := handler.NewProfileHandler(profileService, deps.logger)
	requireAuth := middleware.AuthJWT(authService, deps.logger)

	router.GET("/", healthHandler.Root)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.WrapHandler))
	router.GET("/api-docs", func(c *gin.Context) {
		c.Redirect(nethttp.StatusMovedPermanently, "/swagger/index.html")
	})

	api := router.Group("/api")
	api.GET("/getusers", profileHandler.List)
	api.GET("/searchusers", profileHandler.Search)
	api.PUT("/updateusers", requireAuth, profileHandler.Update)

	userGroup := api.Group("/user")
	userGroup.POST("/register", authHandler.Register)
	userGroup.POST("/login", authHandler.Login)
	userGroup.PUT("/editprofile/:userId", requireAuth, profileHandler.EditProfile)
	userGroup.DELETE("/deleteprofile/:userId", requireAuth, profileHandler.DeleteProfile)
	userGroup.GET("/logout", requireAuth, authHandler.Logout)

	return router
}
