package server

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// renderTemplate renders a template to a buffer first to prevent partial HTML
// from being sent if template execution fails.
func renderTemplate(c echo.Context, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		return c.String(500, "Failed to render page")
	}
	return c.HTMLBlob(200, buf.Bytes())
}

func (s *Server) handleOverlay(c echo.Context) error {
	channel := normalizeChannel(c.QueryParam("channel"))
	if channel == "" {
		channel = defaultChannel
	}

	data := map[string]any{
		"Channel": channel,
	}

	return renderTemplate(c, s.overlayTemplate, data)
}
