// Package api serves leaderboard searches over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/internal/store"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/client"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/metrics"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Searcher runs leaderboard searches; *search.Runner implements it.
type Searcher interface {
	Run(ctx context.Context, groupID roblox.GroupID, opts search.Options) (*search.Result, error)
	Refresh(ctx context.Context, groupID roblox.GroupID, opts search.Options) (*search.Result, error)
}

// Config holds server settings.
type Config struct {
	// Defaults are the search options requests start from.
	Defaults search.Options

	// SearchTimeout bounds one search (0 means no limit beyond the request).
	SearchTimeout time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Defaults:      search.DefaultOptions(),
		SearchTimeout: 10 * time.Minute,
	}
}

// Server holds the handler dependencies.
type Server struct {
	searcher  Searcher
	snapshots store.Store
	config    Config
	logger    zerolog.Logger
	upgrader  websocket.Upgrader
}

// NewServer creates a Server. snapshots may be nil to disable snapshot
// storage.
func NewServer(searcher Searcher, snapshots store.Store, cfg Config, logger zerolog.Logger) *Server {
	return &Server{
		searcher:  searcher,
		snapshots: snapshots,
		config:    cfg,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/search", s.search)
		v1.GET("/search/stream", s.stream)
		v1.GET("/groups/:id/leaderboard", s.latestLeaderboard)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps a search error to the response status.
func statusFor(err error) int {
	var (
		invalid  *roblox.InvalidInputError
		notFound *roblox.GroupNotFoundError
		httpErr  *client.HTTPError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusTooManyRequests {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": search.UserMessage(err)})
}
