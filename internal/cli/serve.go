package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/bayesab/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web calculator",
	Long: `Start the web calculator.

The port defaults to server.port from the config (8080).

Examples:
  bayesab serve              # Start on the configured port
  bayesab serve --port 3000  # Start on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			zap.L().Warn("shutdown cleanup failed", zap.Error(err))
		}
	}()

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	server := web.NewServer(app.Service, port, app.Prometheus.Handler(),
		web.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	return server.Start(ctx)
}
