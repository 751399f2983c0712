package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/podquote/podquote-backend/internal/handlers"
	"github.com/podquote/podquote-backend/internal/middleware"
	"github.com/podquote/podquote-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log              *logger.Logger
	AllowOrigins     []string
	ServiceName      string
	ClipStaticDir    string
	ClipStaticRoute  string
	QueryHandler     *handlers.QueryHandler
	RecordingHandler *handlers.RecordingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(cfg.Log))
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Rendered clips are plain files; serve them from the clip work dir.
	if strings.TrimSpace(cfg.ClipStaticDir) != "" && strings.TrimSpace(cfg.ClipStaticRoute) != "" {
		router.Static(cfg.ClipStaticRoute, cfg.ClipStaticDir)
	}

	api := router.Group("/api")
	{
		api.POST("/queries", cfg.QueryHandler.Create)
		api.GET("/queries", cfg.QueryHandler.List)
		api.GET("/queries/:id", cfg.QueryHandler.Get)

		api.GET("/recordings", cfg.RecordingHandler.List)
		api.GET("/recordings/:id", cfg.RecordingHandler.Get)
	}

	return router
}
