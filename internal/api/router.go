package api

import (
	"fmt"
	"log/slog"

	"github.com/bakchoddost/bakchoddost/internal/api/handlers"
	"github.com/bakchoddost/bakchoddost/internal/api/middleware"
	"github.com/bakchoddost/bakchoddost/internal/auth"
	"github.com/bakchoddost/bakchoddost/internal/config"
	"github.com/bakchoddost/bakchoddost/internal/logstream"
	"github.com/bakchoddost/bakchoddost/internal/metrics"
	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/bakchoddost/bakchoddost/internal/queue"
	"github.com/bakchoddost/bakchoddost/internal/ratelimit"
	"github.com/bakchoddost/bakchoddost/internal/service"
	"github.com/bakchoddost/bakchoddost/internal/sms"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/valkey-io/valkey-go"
	"gorm.io/gorm"

	_ "github.com/bakchoddost/bakchoddost/docs" // Load swagger docs
)

// Deps are the long-lived collaborators shared by the router and the worker.
type Deps struct {
	DB      *gorm.DB
	Queue   queue.Queue
	Metrics *metrics.Metrics
	// Logs streams job progress; an in-process broker when nil.
	Logs logstream.Stream
	// Valkey backs the distributed rate limiter; nil when not configured.
	Valkey valkey.Client
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Logs == nil {
		deps.Logs = logstream.NewBroker()
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	apiLimit, err := ratelimit.New(cfg.RateLimit.Backend, "api", cfg.RateLimit.API, deps.Valkey)
	if err != nil {
		return nil, err
	}
	authLimit, err := ratelimit.New(cfg.RateLimit.Backend, "auth", cfg.RateLimit.Auth, deps.Valkey)
	if err != nil {
		return nil, err
	}
	generateLimit, err := ratelimit.New(cfg.RateLimit.Backend, "generate", cfg.RateLimit.Generate, deps.Valkey)
	if err != nil {
		return nil, err
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	router.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(deps.Metrics))

	sender, err := sms.New(cfg.SMS, cfg.Server.IsProduction(), slog.Default())
	if err != nil {
		return nil, err
	}
	authenticator := auth.NewBasicAuthenticator(deps.DB, auth.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: cfg.Auth.TokenTTL(),
		CookieName:    cfg.Auth.CookieName,
		OTPDuration:   cfg.Auth.OTPTTL(),
		RevealOTP:     cfg.Auth.ReturnOTP || !cfg.Server.IsProduction(),
		SMS:           sender,
	})

	templates := store.NewTemplateStore(deps.DB)
	selector := poem.NewSelector(templates, slog.Default(), deps.Metrics)
	templateSvc := service.NewTemplateService(deps.DB, templates, selector)
	adminSvc := service.NewAdminService(deps.DB, deps.Queue)

	authHandler := handlers.NewAuthHandler(deps.DB, authenticator, cfg.Server.IsProduction())
	poemHandler := handlers.NewPoemHandler(templateSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc, deps.Logs)
	infoHandler := handlers.NewInfoHandler(deps.DB)

	// Public routes
	public := router.Group("/api/v1")
	public.Use(middleware.RateLimit("api", apiLimit, deps.Metrics))
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/version", handlers.GetVersion)
		public.GET("/info", infoHandler.GetInfo)

		authGroup := public.Group("/auth")
		authGroup.Use(middleware.RateLimit("auth", authLimit, deps.Metrics))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/otp/start", authHandler.StartOTP)
			authGroup.POST("/otp/confirm", authHandler.ConfirmOTP)
			authGroup.GET("/username-available", authHandler.UsernameAvailable)
		}

		public.GET("/poems/trending", poemHandler.Trending)
		public.GET("/poems/browse", poemHandler.Browse)
		public.POST("/poems/generate", middleware.RateLimit("generate", generateLimit, deps.Metrics), poemHandler.Generate)
		public.POST("/poems/validate", poemHandler.Validate)
	}

	// Protected routes (require authentication)
	protected := router.Group("/api/v1")
	protected.Use(middleware.RateLimit("api", apiLimit, deps.Metrics))
	protected.Use(authenticator.Middleware())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/register-profile", authHandler.RegisterProfile)

		protected.GET("/poems", poemHandler.ListMine)
		protected.POST("/poems", poemHandler.Create)
		protected.GET("/poems/:id", poemHandler.Get)
		protected.PUT("/poems/:id", poemHandler.Update)
		protected.DELETE("/poems/:id", poemHandler.Delete)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			admin.POST("/backfill", adminHandler.StartBackfill)
			admin.GET("/jobs/:id", adminHandler.GetJob)
			admin.GET("/jobs/:id/logs", adminHandler.StreamJobLogs)
		}
	}

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode, "rate_limit_backend", cfg.RateLimit.Backend)
	return router, nil
}
