package httpcontroller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// initRoutes registers the API surface.
func (s *Server) initRoutes() {
	v1 := s.Echo.Group("/api/v1")
	v1.GET("/score", s.handleScore)
	v1.GET("/forecast", s.handleForecast)
	v1.GET("/tide", s.handleTide)
	v1.GET("/astro", s.handleAstro)

	s.Echo.GET("/healthz", s.handleHealthz)
	if s.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}

// handleScore serves the full current report.
func (s *Server) handleScore(c echo.Context) error {
	report, err := s.Engine.Report(c.Request().Context())
	if err != nil {
		s.webLogger.Error("Score request failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "upstream data unavailable")
	}
	return c.JSON(http.StatusOK, report)
}

// handleForecast serves the period forecast for ?days=N days.
func (s *Server) handleForecast(c echo.Context) error {
	days, err := queryDays(c)
	if err != nil {
		return err
	}
	forecast, err := s.Engine.Forecast(c.Request().Context(), days)
	if err != nil {
		s.webLogger.Error("Forecast request failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "upstream data unavailable")
	}
	return c.JSON(http.StatusOK, forecast)
}

// handleTide serves the current tide state with its daily forecast.
func (s *Server) handleTide(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Engine.TideState(c.Request().Context()))
}

// handleAstro serves the astronomical records for ?days=N days.
func (s *Server) handleAstro(c echo.Context) error {
	days, err := queryDays(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Engine.AstroDays(c.Request().Context(), days))
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"name":   s.Settings.Main.Name,
		"mode":   s.Settings.Fishing.Mode,
	})
}

// queryDays parses the optional days parameter. Zero means the
// configured default; the engine clamps the upper bound.
func queryDays(c echo.Context) (int, error) {
	raw := c.QueryParam("days")
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "days must be a positive integer")
	}
	return days, nil
}
