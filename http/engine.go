// Package http serves the selected function over HTTP.
package http

import (
	"net/http"

	"github.com/aura-studio/kubeless/engine"
	"github.com/aura-studio/kubeless/logging"
	"github.com/gin-gonic/gin"
)

type Engine struct {
	*Options
	*gin.Engine
	invoker *engine.Engine
}

func NewEngine(invoker *engine.Engine, opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
		invoker: invoker,
	}
	if e.Logger == nil {
		e.Logger = logging.Discard()
	}

	if e.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	e.Engine = gin.New()
	e.HandleMethodNotAllowed = true
	e.Use(RequestID(), Logger(e.Logger))

	// panics inside the user function are handled by the invoker; this
	// only catches the runtime's own
	if !invoker.StrictPanics {
		e.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
			e.Logger.WithField("panic", err).Error("recovered from panic")
			c.String(http.StatusInternalServerError, "Internal Server Error")
			c.Abort()
		}))
	}

	e.InstallHandlers()

	return e
}
