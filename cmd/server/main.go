package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/cerodriguez46/devbyte/internal/api/middleware"
	route "github.com/cerodriguez46/devbyte/internal/api/route"
	appctx "github.com/cerodriguez46/devbyte/internal/app"
	"github.com/cerodriguez46/devbyte/internal/config"
	"github.com/cerodriguez46/devbyte/internal/database"
	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/network"
	"github.com/gin-gonic/gin"

	"github.com/enrichman/httpgrace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	if err := logger.Configure(cfg.Misc.LogLevel, cfg.Misc.LogFormat); err != nil {
		logger.WithComponent("main").Warnf("keeping current log settings: %v", err)
	}
	logger.WithComponent("main").Debugf("log level set to: %s", logger.Logger.GetLevel().String())
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)

	app, err := newApp(context.Background(), cfg)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown(cfg.Server.ShutDownTimeout)

	if err := app.StartBackground(); err != nil {
		logger.WithComponent("main").Fatalf("cannot start background work: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := newEngine(app)
	srv := createGraceHttpServer(app, "main", app.Config.Server, r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Error(err)
	}
}

// newApp builds the video store and the playlist source named by cfg.
func newApp(ctx context.Context, cfg *config.Config) (*appctx.App, error) {
	mode, err := database.ParseWriteMode(cfg.Data.WriteMode)
	if err != nil {
		return nil, err
	}
	dao, err := database.NewVideoDao(ctx, database.Options{
		Type:      cfg.Data.StoreType,
		FilePath:  cfg.Data.FilePath,
		DSN:       cfg.Data.DSN,
		WriteMode: mode,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot init video store: %w", err)
	}
	logger.WithComponent("main").Infof("video store: %s (%s)", cfg.Data.StoreType, mode)

	source, err := network.NewPlaylistSource(network.Options{
		Type:       cfg.Remote.SourceType,
		BaseURL:    cfg.Remote.BaseURL,
		PlaylistID: cfg.Remote.PlaylistID,
		Timeout:    cfg.Remote.Timeout,
	})
	if err != nil {
		dao.Close()
		return nil, fmt.Errorf("cannot init playlist source: %w", err)
	}
	logger.WithComponent("main").Infof("playlist source: %s", cfg.Remote.SourceType)

	app, err := appctx.New(cfg, dao, source)
	if err != nil {
		dao.Close()
		return nil, err
	}
	return app, nil
}

func newEngine(app *appctx.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.CORSMiddleware(app.Config.Server.CORSAllowedOrigins))
	r.Use(middleware.HoneybadgerMiddleware(app.Config.Misc.HoneybadgerAPIKey, app.Config.Misc.Environment))
	r.Use(gin.Recovery())
	route.SetupRoutes(r, app)
	return r
}

func createGraceHttpServer(app *appctx.App, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
			// open video streams never finish on their own
			app.StopStreams()
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return app.BaseCtx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
