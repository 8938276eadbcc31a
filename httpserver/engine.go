// Package httpserver runs wrapped handlers behind a local HTTP server that
// mimics an API Gateway HTTP API. It is meant for development and tests.
package httpserver

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aura-studio/apifunc/handler"
	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route is a deployable handler, typically a *handler.Wrapper.
type Route interface {
	Definition() handler.Definition
	Invoke(ctx context.Context, req events.APIGatewayV2HTTPRequest) (any, error)
}

type Engine struct {
	*Options
	*gin.Engine
	logger *zap.Logger

	mu     sync.RWMutex
	routes []handler.Definition
}

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions}

func NewEngine(opts ...Option) *Engine {
	options := NewOptions(opts...)
	if options.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	e := &Engine{
		Options: options,
		Engine:  gin.New(),
	}
	e.logger = e.Options.logger()

	e.Use(gin.Recovery())
	if e.DebugMode {
		e.Use(e.AccessLog)
	}
	if e.CorsMode {
		e.Use(Cors())
	}

	e.InstallHandlers()

	return e
}

func (e *Engine) InstallHandlers() {
	e.HandleAllMethods("/health-check", e.OK)
	e.GET("/_/meta", e.Meta)
	e.NoRoute(e.PageNotFound)
	e.NoMethod(e.MethodNotAllowed)
}

func (e *Engine) HandleAllMethods(relativePath string, handlers ...gin.HandlerFunc) {
	for _, method := range methods {
		e.Handle(method, relativePath, handlers...)
	}
}

// Register mounts route at its definition's method and path.
func (e *Engine) Register(route Route) {
	def := route.Definition()
	e.Handle(def.Method, GinPath(def.Path), e.Dispatch(route))

	e.mu.Lock()
	e.routes = append(e.routes, def)
	e.mu.Unlock()

	e.logger.Debug("route registered", zap.String("route", def.Route()))
}

// GinPath converts an API Gateway path template to gin syntax:
// "{id}" becomes ":id" and "{proxy+}" becomes "*proxy".
func GinPath(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		if strings.HasSuffix(name, "+") {
			segs[i] = "*" + strings.TrimSuffix(name, "+")
		} else {
			segs[i] = ":" + name
		}
	}
	return strings.Join(segs, "/")
}

// Dispatch converts the request into an API Gateway event, invokes route
// and writes its result back.
func (e *Engine) Dispatch(route Route) gin.HandlerFunc {
	def := route.Definition()
	return func(c *gin.Context) {
		req, err := e.NewRequest(c, &def)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			c.Abort()
			return
		}

		var result any
		if panicErr := e.doSafe(func() {
			result, err = route.Invoke(c.Request.Context(), req)
		}); panicErr != nil {
			err = panicErr
		}
		if err != nil {
			e.logger.Error("invoke failed", zap.String("route", def.Route()), zap.Error(err))
			c.String(http.StatusInternalServerError, err.Error())
			c.Abort()
			return
		}

		e.WriteResult(c, result)
		c.Abort()
	}
}

func (e *Engine) OK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
	c.Abort()
}

// Meta lists the registered route definitions.
func (e *Engine) Meta(c *gin.Context) {
	e.mu.RLock()
	defs := make([]handler.Definition, len(e.routes))
	copy(defs, e.routes)
	e.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Route() < defs[j].Route()
	})
	c.JSON(http.StatusOK, gin.H{"routes": defs})
	c.Abort()
}

func (e *Engine) PageNotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 page not found")
	c.Abort()
}

func (e *Engine) MethodNotAllowed(c *gin.Context) {
	c.String(http.StatusMethodNotAllowed, "405 method not allowed")
	c.Abort()
}

func (e *Engine) AccessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	e.logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}
