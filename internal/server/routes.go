package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (never rate limited)
	s.echo.GET("/health", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	limiter := newRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst)

	// OAuth flow
	auth := s.echo.Group("/auth", limiter)
	auth.GET("/start", s.handleAuthStart)
	auth.GET("/callback", s.handleAuthCallback)

	// Goal and metric API
	api := s.echo.Group("/api", limiter)
	api.GET("/setgoal", s.handleSetGoal)
	api.POST("/setgoal", s.handleSetGoal)
	api.GET("/metric", s.handleMetric)

	// Overlay page for OBS browser sources
	s.echo.GET("/overlay/subscribers", s.handleOverlay)
}
