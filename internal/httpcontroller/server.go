// internal/httpcontroller/server.go
package httpcontroller

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/engine"
	"github.com/fishcast/fishcast-go/internal/logging"
	"github.com/fishcast/fishcast-go/internal/observability"
)

// Server encapsulates the Echo server and its collaborators.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Engine   *engine.Engine
	Metrics  *observability.Metrics

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New initializes the HTTP server around an engine.
func New(settings *conf.Settings, scoreEngine *engine.Engine, metrics *observability.Metrics) *Server {
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		Engine:   scoreEngine,
		Metrics:  metrics,
	}

	s.Echo.HideBanner = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	s.initLogger()
	s.configureMiddleware()
	s.initRoutes()
	return s
}

// Start begins listening and serving HTTP requests. It blocks until the
// listener stops.
func (s *Server) Start() error {
	s.webLogger.Info("HTTP server starting", "port", s.Settings.WebServer.Port)
	return s.Echo.Start(":" + s.Settings.WebServer.Port)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	if s.webLoggerClose != nil {
		if closeErr := s.webLoggerClose(); closeErr != nil {
			s.webLogger.Error("Failed to close web log file", "error", closeErr)
		}
	}
	return err
}

// initLogger sets up the web request logger, falling back to the shared
// service logger when the file logger cannot be created.
func (s *Server) initLogger() {
	s.webLogger = logging.ForService("web")

	logConfig := s.Settings.WebServer.Log
	if !logConfig.Enabled || logConfig.Path == "" {
		return
	}
	fileLogger, closeFunc, err := logging.NewFileLogger(logConfig.Path, "web", slog.LevelInfo)
	if err != nil {
		s.webLogger.Error("Failed to initialize web log file, using default logger",
			"error", err, "path", logConfig.Path)
		return
	}
	s.webLogger = fileLogger
	s.webLoggerClose = closeFunc
}
