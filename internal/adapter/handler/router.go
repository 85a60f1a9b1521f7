package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clipforge/clipforge/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	jobHandler     *Job
	episodeHandler *Episode
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, jobHandler *Job, episodeHandler *Episode) *Router {
	return &Router{
		cfg:            cfg,
		jobHandler:     jobHandler,
		episodeHandler: episodeHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupEpisodeRoutes(v1)
	rt.setupJobRoutes(v1)
}

func (rt *Router) setupEpisodeRoutes(g *echo.Group) {
	episodes := g.Group("/episodes")
	episodes.GET("", rt.episodeHandler.List)
	episodes.GET("/:id", rt.episodeHandler.Get)
	episodes.POST("/:id/upload-transcript", rt.episodeHandler.UploadTranscript)
	episodes.POST("/:id/process", rt.jobHandler.Submit)
}

func (rt *Router) setupJobRoutes(g *echo.Group) {
	jobs := g.Group("/jobs")
	jobs.GET("/:id", rt.jobHandler.Status)
	jobs.GET("/:id/files", rt.jobHandler.Files)
	jobs.DELETE("/:id", rt.jobHandler.Cancel)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "development"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}
