package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"dwellingcore/internal/api"
	"dwellingcore/internal/blob"
	"dwellingcore/internal/core"
	"dwellingcore/internal/export"
)

func (c *cli) serveCmd() *cobra.Command {
	var tracePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document API, change feed and metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts appOptions
			if tracePath != "" {
				fh, err := os.OpenFile(tracePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err != nil {
					return fmt.Errorf("open trace file: %w", err)
				}
				defer func() { _ = fh.Close() }()
				opts.tracer = core.NewJSONTracer(fh)
			}
			a, err := c.open(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			artifacts, err := blob.Open(ctx, a.cfg.BlobOptions())
			if err != nil {
				return err
			}
			exporter := export.New(artifacts, a.cfg.Export.Session, export.WithPresign(a.cfg.Export.PresignExpiry))
			srv := api.NewServer(a.svc,
				api.WithExporter(exporter),
				api.WithLogger(a.logger),
				api.WithMetricsHandler(promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{})),
			)
			httpSrv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()
			a.logger.Info("serving", "addr", a.cfg.HTTP.Addr, "storage", a.cfg.Storage.Driver, "blob", artifacts.Driver())

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.logger.Info("shutting down")
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&tracePath, "trace", "", "append JSON trace spans to this file")
	cmd.Flags().String("addr", "", "listen address (overrides http.addr)")
	_ = c.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
