package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lifecycle"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/scribe"
	"github.com/aretw0/scribe/pkg/adapters/watch"
	"github.com/aretw0/scribe/pkg/metrics"
)

var (
	watchDebounce    time.Duration
	watchMetricsAddr string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Regenerate documentation whenever a file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg := prom.NewRegistry()
		sess, err := newSession(metrics.NewPrometheusRecorder(reg))
		if err != nil {
			return err
		}
		logger := sess.logger

		addr := sess.settings.Metrics.Addr
		if watchMetricsAddr != "" {
			addr = watchMetricsAddr
		}
		if addr != "" {
			serveMetrics(ctx, addr, reg)
		}

		backup := sess.settings.Backup && !noBackup
		regenerate := func(ctx context.Context, path string) error {
			out, err := sess.scribe.Generator.Generate(ctx, path, sess.template(), sess.vars,
				scribe.GenerateOptions{Backup: backup})
			if err != nil {
				return err
			}
			logger.Info("documentation updated", "source", out.Source, "run", out.RunID, "dir", out.OutputDir)
			return nil
		}

		if err := regenerate(ctx, args[0]); err != nil {
			logger.Error("initial generation failed", "source", args[0], "error", err)
		}

		debounce := sess.settings.Watch.Debounce
		if watchDebounce > 0 {
			debounce = watchDebounce
		}
		w := watch.New(args[0], regenerate, watch.WithDebounce(debounce), watch.WithLogger(logger))
		logger.Info("watching for changes", "path", args[0], "debounce", debounce)
		return w.Run(ctx)
	},
}

// serveMetrics exposes reg over HTTP until ctx ends.
func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		slog.Error("metrics server stopped", "addr", addr, "error", err)
	}))
	slog.Info("serving metrics", "addr", addr)
}

func init() {
	addTemplateFlags(watchCmd)
	watchCmd.Flags().BoolVar(&noBackup, "no-backup", false, "Overwrite existing documents without a backup")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before regenerating (default from settings)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(watchCmd)
}
