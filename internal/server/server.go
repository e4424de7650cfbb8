package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/notpogix/twitch-subgoal-overlay/internal/config"
	"github.com/notpogix/twitch-subgoal-overlay/internal/domain"
	apperrors "github.com/notpogix/twitch-subgoal-overlay/internal/errors"
)

//go:embed web/overlay.html
var webFS embed.FS

// appService is the application surface the handlers depend on.
type appService interface {
	StartAuthorization(channel string) (string, error)
	CompleteAuthorization(ctx context.Context, code, state string) (*domain.Credential, error)
	CurrentSubscriberCount(ctx context.Context, channel string) (int, bool)
	SetGoal(channel, goal string) error
	Goal(channel string) int
	Ping(ctx context.Context) error
}

type Server struct {
	echo            *echo.Echo
	config          *config.Config
	app             appService
	overlayTemplate *template.Template
}

func NewServer(cfg *config.Config, app appService) (*Server, error) {
	overlayTmpl, err := template.ParseFS(webFS, "web/overlay.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse overlay template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:            e,
		config:          cfg,
		app:             app,
		overlayTemplate: overlayTmpl,
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
