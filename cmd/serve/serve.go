// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fishcast/fishcast-go/internal/conf"
	"github.com/fishcast/fishcast-go/internal/datastore"
	"github.com/fishcast/fishcast-go/internal/engine"
	"github.com/fishcast/fishcast-go/internal/httpcontroller"
	"github.com/fishcast/fishcast-go/internal/logging"
	"github.com/fishcast/fishcast-go/internal/observability"
	"github.com/fishcast/fishcast-go/internal/observability/metrics"
)

var serveLogger = logging.ForService("serve")

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serve scores, forecasts, tide and astronomy data over HTTP with Prometheus metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}

	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		serveLogger.Error("Failed to bind serve flags", "error", err)
	}
	return cmd
}

func run(settings *conf.Settings) error {
	obs, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	db := datastore.New(settings)
	if db != nil {
		if err := db.Open(); err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				serveLogger.Error("Failed to close datastore", "error", err)
			}
		}()
	}

	scoreEngine, err := engine.New(settings, db, obs)
	if err != nil {
		return err
	}

	server := httpcontroller.New(settings, scoreEngine, obs)

	stopPolling := make(chan struct{})
	go scoreEngine.StartPolling(stopPolling)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		close(stopPolling)
		return err
	case <-ctx.Done():
	}

	serveLogger.Info("Shutting down")
	close(stopPolling)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metrics.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
