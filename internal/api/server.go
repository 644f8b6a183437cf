package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// NewServer builds the echo instance with middleware, renderer and routes.
// A nil logger keeps echo's default.
func NewServer(h *Handler, logger *log.Logger) (*echo.Echo, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if logger != nil {
		e.Logger = logger
	}
	e.Renderer = renderer

	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	h.RegisterRoutes(e)
	return e, nil
}
