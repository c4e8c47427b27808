package http

import (
	"net/http"

	"github.com/aura-studio/kubeless/engine"
	"github.com/gin-gonic/gin"
)

var methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodHead,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

func (e *Engine) InstallHandlers() {
	e.HandleAllMethods("/", e.Dispatch)
	e.HandleAllMethods("/healthz", e.Healthz)
	e.GET("/metrics", gin.WrapH(e.invoker.Recorder().Handler()))
	if e.DebugMode {
		e.HandleAllMethods("/_/", e.Debug)
	}
	e.NoRoute(e.PageNotFound)
	e.NoMethod(e.MethodNotAllowed)
}

// routeByPath serves methods gin has no tree for, such as PURGE or
// PROPFIND, on the paths that accept any method.
func (e *Engine) routeByPath(c *gin.Context) bool {
	switch c.Request.URL.Path {
	case "/":
		e.Dispatch(c)
	case "/healthz":
		e.Healthz(c)
	case "/_/":
		if !e.DebugMode {
			return false
		}
		e.Debug(c)
	default:
		return false
	}
	return true
}

func (e *Engine) HandleAllMethods(relativePath string, handlers ...gin.HandlerFunc) {
	for _, method := range methods {
		e.Handle(method, relativePath, handlers...)
	}
}

// Dispatch turns the request into an Event and answers with whatever the
// function returns. The body is left alone unless the method is POST.
func (e *Engine) Dispatch(c *gin.Context) {
	ev, err := NewEvent(c.Request)
	if err != nil {
		e.Logger.WithError(err).WithField(RequestIDKey, c.GetString(RequestIDKey)).Warn("failed to read request body")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		c.Abort()
		return
	}

	rsp, err := e.invoker.Invoke(ev)
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error")
		c.Abort()
		return
	}

	// no content type is forced; net/http sniffs one on first write
	c.Status(http.StatusOK)
	_, _ = c.Writer.WriteString(rsp)
	c.Abort()
}

func (e *Engine) Healthz(c *gin.Context) {
	code, body := engine.Health(c.Request.Method)
	c.String(code, body)
	c.Abort()
}

func (e *Engine) PageNotFound(c *gin.Context) {
	if e.routeByPath(c) {
		return
	}
	c.String(http.StatusNotFound, "404 page not found")
	c.Abort()
}

func (e *Engine) MethodNotAllowed(c *gin.Context) {
	if e.routeByPath(c) {
		return
	}
	c.String(http.StatusMethodNotAllowed, "405 method not allowed")
	c.Abort()
}
