package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/johnquangdev/script-workspace/docs"
	"github.com/johnquangdev/script-workspace/pkg/config"
)

// SubscriberCounter reports how many event stream clients are connected
type SubscriberCounter interface {
	Subscribers() int
}

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	workspaceHandler *Workspace
	scriptHandler    *Script
	authMiddleware   echo.MiddlewareFunc
	subscribers      SubscriberCounter
}

// NewRouter creates a new router with all handlers. authMiddleware may be
// nil, in which case the API is served without authentication.
func NewRouter(cfg *config.Config, workspaceHandler *Workspace, scriptHandler *Script, authMiddleware echo.MiddlewareFunc, subscribers SubscriberCounter) *Router {
	return &Router{
		cfg:              cfg,
		workspaceHandler: workspaceHandler,
		scriptHandler:    scriptHandler,
		authMiddleware:   authMiddleware,
		subscribers:      subscribers,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	if rt.authMiddleware != nil {
		v1.Use(rt.authMiddleware)
	}

	rt.setupWorkspaceRoutes(v1)
	rt.setupScriptRoutes(v1)
}

// setupWorkspaceRoutes configures workspace routes
func (rt *Router) setupWorkspaceRoutes(g *echo.Group) {
	ws := g.Group("/workspace")

	ws.GET("", rt.workspaceHandler.Get)
	ws.DELETE("", rt.workspaceHandler.Reset)
	ws.POST("/upload", rt.workspaceHandler.Upload)
	ws.POST("/generate", rt.workspaceHandler.Generate)
	ws.POST("/sections/:id/synthesize", rt.workspaceHandler.SynthesizeSection)
	ws.POST("/batch-synthesize", rt.workspaceHandler.BatchSynthesize)
	ws.GET("/export", rt.workspaceHandler.Export)
	ws.GET("/events", rt.workspaceHandler.Events)
}

func (rt *Router) setupScriptRoutes(g *echo.Group) {
	g.POST("/script/parse", rt.scriptHandler.Parse)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	subscribers := 0
	if rt.subscribers != nil {
		subscribers = rt.subscribers.Subscribers()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
		"subscribers": subscribers,
	})
}
