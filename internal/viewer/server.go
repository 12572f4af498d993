// Package viewer serves the loaded campaign over a JSON HTTP API for the
// chart front end.
package viewer

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshharrison/ganttloom/internal/session"
)

const (
	defaultRefreshTimeout = 30 * time.Second
	defaultWidth          = 1200
	snapshotKey           = "snapshot"
)

// Options configures a Server.
type Options struct {
	Loader         session.Loader // used by POST /api/refresh; nil disables refresh
	RefreshTimeout time.Duration
	Width          float64 // default chart width for /api/layout
	Now            func() time.Time
}

// Server is the ganttloom HTTP API.
type Server struct {
	store  *session.Store
	opts   Options
	router *gin.Engine
}

// NewServer creates a server over store.
func NewServer(store *session.Store, opts Options) *Server {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = defaultRefreshTimeout
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{store: store, opts: opts, router: router}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/refresh", s.handleRefresh)

		loaded := api.Group("", s.requireSnapshot)
		loaded.GET("/sections", s.handleSections)
		loaded.GET("/tasks", s.handleTasks)
		loaded.GET("/tasks/:id", s.handleTask)
		loaded.POST("/tasks/:id/toggle", s.handleToggle)
		loaded.PUT("/tasks/:id/comment", s.handleComment)
		loaded.GET("/groups", s.handleGroups)
		loaded.GET("/stats", s.handleStats)
		loaded.GET("/conflicts", s.handleConflicts)
		loaded.GET("/layout", s.handleLayout)
		loaded.POST("/layout/zoom", s.handleZoom)
		loaded.GET("/export", s.handleExport)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
