package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hakim/scanreports/internal/api"
	"github.com/hakim/scanreports/internal/config"
	"github.com/hakim/scanreports/internal/logging"
	"github.com/hakim/scanreports/internal/metrics"
	"github.com/hakim/scanreports/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report API server",
	Long: `Start the HTTP API and serve reports until interrupted.

Endpoints:
  GET /                       liveness message
  GET /health                 health status with timestamp
  GET /metrics                Prometheus metrics
  GET /api/reports            paginated report list (?skip=&limit=)
  GET /api/reports/latest     most recent report
  GET /api/reports/{id}       report by id

Running scanreports without a subcommand does the same as serve with
no flags.

SIGINT or SIGTERM stops accepting connections and drains in-flight
requests for at most server.shutdown_timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Step 1: Apply flag overrides
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
				return fmt.Errorf("invalid port %d", cfg.Server.Port)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, cfg)
	},
}

// runServe builds the logger, provider and API from c and serves until ctx
// is cancelled
func runServe(ctx context.Context, c *config.Config) error {
	// Step 2: Logger
	log, err := logging.New(logging.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	// Step 3: Report provider
	store, err := openProvider(c)
	if err != nil {
		return err
	}
	log.Info().
		Int("reports", store.Len()).
		Str("fixtures", c.Data.FixturesPath).
		Msg("report provider ready")

	// Step 4: API
	srv, err := api.NewServer(api.Options{
		Provider:   store,
		Logger:     log,
		Metrics:    metrics.NewRegistry(),
		CORS:       c.CORS,
		Pagination: c.Pagination,
		CacheSize:  c.Cache.Size,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Step 5: Serve until signalled
	gs := server.New(c.Server.Addr(), srv.Handler(), server.Timeouts{
		Read:     c.Server.ReadTimeout,
		Write:    c.Server.WriteTimeout,
		Idle:     c.Server.IdleTimeout,
		Shutdown: c.Server.ShutdownTimeout,
	}, log)

	if err := gs.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
