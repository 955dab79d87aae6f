package route

import (
	"github.com/cerodriguez46/devbyte/internal/app"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, appCtx *app.App) {
	publicRouter := r.Group("")

	// All Public APIs
	server := appCtx.Config.Server

	NewStatusRouter(server.RequestTimeout, publicRouter, appCtx.Config)
	NewVideoRouter(server.RequestTimeout, server.RefreshTimeout, publicRouter, appCtx.Repo, appCtx.StreamsDone())
}
