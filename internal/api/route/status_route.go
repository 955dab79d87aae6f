package route

import (
	"net/http"
	"time"

	"github.com/cerodriguez46/devbyte/internal/api/controller"
	"github.com/cerodriguez46/devbyte/internal/api/middleware"
	"github.com/cerodriguez46/devbyte/internal/config"
	"github.com/gin-gonic/gin"
)

// NewStatusRouter sets up the health probe and the public configuration.
func NewStatusRouter(timeout time.Duration, group *gin.RouterGroup, cfg *config.Config) {
	group.GET("health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "UP"})
	})

	cc := controller.NewConfigurationController(cfg)
	group.GET("configuration", middleware.RequestTimeout(timeout), cc.GetConfiguration)
}
