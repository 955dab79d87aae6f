package route

import (
	"time"

	"github.com/cerodriguez46/devbyte/internal/api/controller"
	"github.com/cerodriguez46/devbyte/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// NewVideoRouter sets up the video routes. The stream is long-lived and has no
// timeout; it ends when shutdown is closed.
func NewVideoRouter(timeout, refreshTimeout time.Duration, group *gin.RouterGroup, repo controller.VideoRepository, shutdown <-chan struct{}) {
	vc := controller.NewVideoController(repo, shutdown)

	group.GET("videos", middleware.RequestTimeout(timeout), vc.AllVideos)
	group.POST("videos/refresh", middleware.RequestTimeout(refreshTimeout), vc.RefreshVideos)
	group.GET("videos/stream", vc.StreamVideos)
}
