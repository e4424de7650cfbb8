package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/notpogix/twitch-subgoal-overlay/internal/errors"
)

const oauthTimeout = 10 * time.Second

func (s *Server) handleAuthStart(c echo.Context) error {
	channel := normalizeChannel(c.QueryParam("channel"))

	redirectURL, err := s.app.StartAuthorization(channel)
	if err != nil {
		return err
	}

	return c.Redirect(302, redirectURL)
}

// handleAuthCallback answers with plain text: the caller is a browser coming
// back from the Twitch consent screen, not an API client.
func (s *Server) handleAuthCallback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		description := c.QueryParam("error_description")
		slog.Warn("Authorization denied by provider", "error", providerErr, "description", description)
		return c.String(400, fmt.Sprintf("Authorization failed: %s", description))
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.String(400, "Missing code parameter")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	cred, err := s.app.CompleteAuthorization(ctx, code, c.QueryParam("state"))
	if err != nil {
		var structured *apperrors.Error
		if errors.As(err, &structured) && structured.Type == apperrors.TypeInvalidState {
			return c.String(400, "Invalid state")
		}
		slog.Error("Authorization failed", "error", err)
		return c.String(500, "Failed to authenticate with Twitch")
	}

	return c.String(200, fmt.Sprintf("Authorization complete for channel %s. You can close this window.", cred.ChannelID))
}
