package httpcontroller

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.Gzip())
	s.Echo.Use(s.requestLoggingMiddleware())
}

// requestLoggingMiddleware logs each request and feeds the HTTP metrics.
func (s *Server) requestLoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			elapsed := time.Since(start)
			method := c.Request().Method
			path := c.Path()
			status := c.Response().Status

			s.webLogger.Info("Request served",
				"method", method,
				"path", c.Request().URL.Path,
				"status", status,
				"elapsed", elapsed,
				"client_ip", c.RealIP(),
			)

			if s.Metrics != nil {
				s.Metrics.HTTP.RecordHTTPRequest(method, path, strconv.Itoa(status))
				s.Metrics.HTTP.RecordHTTPRequestDuration(method, path, elapsed.Seconds())
				switch {
				case status >= 500:
					s.Metrics.HTTP.RecordHTTPRequestError(method, path, "server_error")
				case status >= 400:
					s.Metrics.HTTP.RecordHTTPRequestError(method, path, "client_error")
				}
			}
			return nil
		}
	}
}
