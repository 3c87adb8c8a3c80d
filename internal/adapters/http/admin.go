package http

import (
	"net/http"

	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func registerAdmin(api *gin.RouterGroup, o *orch.Orchestrator) {
	spaces := api.Group("/spaces")

	spaces.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"spaces": o.Rooms.List()})
	})

	spaces.GET("/:id/members", func(c *gin.Context) {
		id := domain.SpaceID(c.Param("id"))
		members, ok := o.Members(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "space has no live room"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"space": id, "members": members})
	})

	spaces.DELETE("/:id", func(c *gin.Context) {
		id := domain.SpaceID(c.Param("id"))
		n := o.EvictRoom(id)
		log.Info().Str("module", "adapters.http").Str("request_id", c.GetString("request_id")).
			Str("space", string(id)).Int("evicted", n).Msg("admin evict")
		c.JSON(http.StatusOK, gin.H{"space": id, "evicted": n})
	})

	spaces.DELETE("/:id/members/:userId", func(c *gin.Context) {
		id := domain.SpaceID(c.Param("id"))
		uid := domain.UserID(c.Param("userId"))
		n := o.KickUser(id, uid)
		if n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not in space"})
			return
		}
		log.Info().Str("module", "adapters.http").Str("request_id", c.GetString("request_id")).
			Str("space", string(id)).Str("user", string(uid)).Msg("admin kick")
		c.JSON(http.StatusOK, gin.H{"space": id, "kicked": n})
	})
}
