package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/rota-engine/api"
)

// serveCmd starts the HTTP API.
//
// GRACEFUL SHUTDOWN:
// On SIGINT/SIGTERM the server stops accepting connections, waits up to
// server.shutdown_timeout for active requests, then closes the database.
func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg.Server.Port = port
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			handler := api.NewHandler(store, logger, api.Options{
				MaxRangeDays:    cfg.Schedule.MaxRangeDays,
				BatchWorkers:    cfg.Schedule.BatchWorkers,
				DefaultRotation: cfg.Schedule.DefaultVariant(),
				LegacyRotation:  cfg.Schedule.LegacyVariant(),
			})
			router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

			server := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting",
					zap.String("addr", server.Addr),
					zap.String("driver", cfg.Database.Driver),
					zap.String("database", cfg.Database.Path))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			// Wait for interrupt signal
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides server.port)")
	return cmd
}
