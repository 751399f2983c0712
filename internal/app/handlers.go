package app

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/podquote/podquote-backend/internal/handlers"
	"github.com/podquote/podquote-backend/internal/platform/logger"
	"github.com/podquote/podquote-backend/internal/server"
)

type Handlers struct {
	Query     *handlers.QueryHandler
	Recording *handlers.RecordingHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Query:     handlers.NewQueryHandler(serviceset.QA),
		Recording: handlers.NewRecordingHandler(serviceset.Catalog),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers) *gin.Engine {
	clipDir := ""
	clipRoute := ""
	if cfg.ClipsEnabled && strings.TrimSpace(cfg.ClipPublicBaseURL) != "" {
		clipDir = cfg.ClipWorkDir
		clipRoute = "/clips"
	}
	return server.NewRouter(server.RouterConfig{
		Log:              log,
		AllowOrigins:     cfg.AllowOrigins,
		ServiceName:      "podquote-backend",
		ClipStaticDir:    clipDir,
		ClipStaticRoute:  clipRoute,
		QueryHandler:     handlerset.Query,
		RecordingHandler: handlerset.Recording,
	})
}
