package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/gin-gonic/gin"
	honeybadger "github.com/honeybadger-io/honeybadger-go"
)

// HoneybadgerMiddleware sends error/warning notifications to Honeybadger.
// With an empty apiKey it only passes requests through.
// On panic, it notifies Honeybadger and re-panics to allow gin.Recovery to handle the response.
func HoneybadgerMiddleware(apiKey, env string) gin.HandlerFunc {
	log := logger.WithComponent("honeybadger")
	if apiKey == "" {
		log.Info("Honeybadger is not active. To enable error reporting, set misc.honeybadger_api_key (DEVBYTE_MISC_HONEYBADGER_API_KEY).")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	honeybadger.Configure(honeybadger.Configuration{
		APIKey: apiKey,
		Env:    env,
	})

	log.Info("Honeybadger error reporting is enabled.")

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				// Notify Honeybadger with stacktrace, then re-panic
				honeybadger.Notify(fmt.Sprintf("Panic: %s %s", c.Request.Method, c.Request.URL.Path),
					c.Request, honeybadger.Context{"stack": string(debug.Stack())}, honeybadger.Tags{"panic", "http"})
				log.Error("Recovered from panic, notified Honeybadger: ", rec)
				panic(rec)
			}
		}()

		c.Next()

		status := c.Writer.Status()
		if shouldReport(c.Request.Context(), status) {
			if status >= 500 {
				honeybadger.Notify(fmt.Sprintf("Error: HTTP %d: %s %s", status, c.Request.Method, c.Request.URL.Path), c.Request, honeybadger.Tags{"5XX", "http"})
			} else {
				// For warnings (4xx), send as notice without stacktrace
				honeybadger.Notify(fmt.Sprintf("Warning: HTTP %d: %s %s", status, c.Request.Method, c.Request.URL.Path), honeybadger.Tags{"4XX", "http"})
			}
			log.Warnf("Honeybadger reported HTTP %d for %s %s", status, c.Request.Method, c.Request.URL.Path)
		}
	}
}

// statusClientClosedRequest is the non-standard 499 written for abandoned requests.
const statusClientClosedRequest = 499

// shouldReport skips not-found responses and requests whose client went away.
func shouldReport(ctx context.Context, status int) bool {
	if status < 400 || status == http.StatusNotFound || status == statusClientClosedRequest {
		return false
	}
	return !errors.Is(ctx.Err(), context.Canceled)
}
