package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	appLogger "github.com/1457cus/shaoguan-travel-planner/app/logger"
	"github.com/1457cus/shaoguan-travel-planner/app/tracer"
	"github.com/1457cus/shaoguan-travel-planner/internal/router"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API, health check and Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.HTTPPort
		}
		timeout := routeTimeout(cfg.Server.Timeout, deps.GenerateBudget)
		logger.DebugContext(ctx, "Route timeout", slog.Duration("timeout", timeout))

		mainRouter := router.SetupRouter(&router.Config{
			ValidatorHandler: deps.ValidatorHandler,
			PipelineHandler:  deps.PipelineHandler,
			WeatherHandler:   deps.WeatherHandler,
			ItineraryHandler: deps.ItineraryHandler,
			MetricsHandler:   tracer.Handler(),
			AllowedOrigins:   cfg.Server.AllowedOrigins,
			GenerateLimit:    cfg.Server.GenerateLimit,
		})

		r := chi.NewMux()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(appLogger.StructuredLogger(logger))
		r.Use(middleware.Recoverer)
		r.Use(middleware.StripSlashes)
		r.Use(middleware.Timeout(timeout))
		r.Use(middleware.Compress(5, "application/json"))
		r.Mount("/", mainRouter)

		addr := fmt.Sprintf(":%s", servePort)
		srv := &http.Server{
			Addr:    addr,
			Handler: r,
			// Generation waits on the chat service, so writes may take up to the route timeout.
			ReadTimeout:  5 * time.Second,
			WriteTimeout: timeout + 5*time.Second,
			IdleTimeout:  120 * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		}

		errCh := make(chan error, 1)
		go func() {
			logger.InfoContext(ctx, "Starting HTTP server", slog.String("address", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutdown signal received, starting graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("HTTP server gracefully stopped")
		return nil
	},
}

// routeTimeout is the configured timeout, raised when needed so that a
// generation request can run every configured retry before the route
// deadline fires.
func routeTimeout(configured, generateBudget time.Duration) time.Duration {
	if configured <= 0 {
		configured = 60 * time.Second
	}
	if needed := generateBudget + 5*time.Second; generateBudget > 0 && needed > configured {
		return needed
	}
	return configured
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8000", "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
