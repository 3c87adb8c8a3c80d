package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Arena/internal/adapters/signal"
	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, keeping one the
// caller already sent.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"rooms":       len(orch.Rooms.List()),
			"connections": orch.Registry.Len(),
		})
	})

	ctrl := signal.NewSignalWSController(orch, cfg.WS, cfg.Limits.MovePerSecond)
	r.GET(cfg.WS.Path, func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("request_id", c.GetString("request_id")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	if cfg.Admin.Enabled {
		registerAdmin(r.Group("/api"), orch)
	}

	log.Info().Str("module", "adapters.http").Str("ws_path", cfg.WS.Path).Bool("admin", cfg.Admin.Enabled).Msg("router setup")
	return r
}
