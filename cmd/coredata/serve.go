package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/coredata"
	"github.com/aretw0/coredata/internal/presentation/tui"
	httpAdapter "github.com/aretw0/coredata/pkg/adapters/http"
	"github.com/aretw0/coredata/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the resolvers as a JSON API over HTTP.
Prometheus metrics are served on /metrics and the OpenAPI document on /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		s, err := newSetup(cfg, metrics.Hooks())
		if err != nil {
			return err
		}
		defer s.Close()

		version := strings.TrimSpace(coredata.Version)
		handler, err := httpAdapter.NewHandler(s.client,
			httpAdapter.WithServerLogger(s.logger),
			httpAdapter.WithMetricsHandler(metrics.Handler()),
			httpAdapter.WithVersion(version),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(os.Stderr, version, srv.Addr)
			s.logger.Info("starting server", "addr", srv.Addr, "api_url", cfg.APIURL)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil

		case <-ctx.Done():
			s.logger.Info("shutting down server")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			s.logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
}
