package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/notpogix/twitch-subgoal-overlay/internal/errors"
)

// defaultChannel is used when the overlay polls without a channel parameter.
const defaultChannel = "test"

type metricResponse struct {
	Current int `json:"current"`
	Goal    int `json:"goal"`
}

// requestValue reads a parameter from the query string or the form body, in
// that order.
func requestValue(c echo.Context, name string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return c.FormValue(name)
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimSpace(channel))
}

func (s *Server) handleSetGoal(c echo.Context) error {
	channel := normalizeChannel(requestValue(c, "channel"))
	goal := strings.TrimSpace(requestValue(c, "goal"))
	if goal == "" {
		return apperrors.InvalidRequestError("goal is required")
	}

	if err := s.app.SetGoal(channel, goal); err != nil {
		return err
	}

	return c.JSON(200, map[string]string{
		"status":  "ok",
		"channel": channel,
		"goal":    goal,
	})
}

// handleMetric never errors toward the overlay: an unknown count renders as
// zero against the configured goal.
func (s *Server) handleMetric(c echo.Context) error {
	channel := normalizeChannel(c.QueryParam("channel"))
	if channel == "" {
		channel = defaultChannel
	}

	current, ok := s.app.CurrentSubscriberCount(c.Request().Context(), channel)
	if !ok {
		current = 0
	}

	return c.JSON(200, metricResponse{
		Current: current,
		Goal:    s.app.Goal(channel),
	})
}
