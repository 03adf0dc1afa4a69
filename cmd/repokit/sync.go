package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bft-labs/repokit/internal/app"
	"github.com/bft-labs/repokit/pkg/log"
	"github.com/bft-labs/repokit/pkg/repository"
)

const shutdownTimeout = 5 * time.Second

func newSyncCmd(c *cli) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Keep the local cache warm by refreshing it from the service",
		Long: `Refresh the local cache from the notes service on an interval, backing off
while the service fails. With the file backend, edits made to the cache file by
other processes are picked up as they happen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runSync(ctx, watch)
		},
	}
	cmd.Flags().DurationVar(&c.cfg.RefreshInterval, "interval", c.cfg.RefreshInterval, "pause between successful refreshes")
	cmd.Flags().StringVar(&c.cfg.MetricsAddr, "metrics-addr", c.cfg.MetricsAddr, "serve Prometheus metrics on this address (disabled when empty)")
	cmd.Flags().BoolVar(&c.cfg.Once, "once", c.cfg.Once, "refresh once and exit")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the file cache when it changes on disk")
	return cmd
}

func (c *cli) runSync(ctx context.Context, watch bool) error {
	d, err := c.wire(ctx)
	if err != nil {
		return err
	}
	if d.repo.EffectiveStrategy() != repository.RemoteWithLocalCache {
		c.logger.Warn("sync only writes the cache with the remote-with-local-cache strategy",
			log.Strategy(d.repo.EffectiveStrategy()))
	}

	refresher := app.NewRefresher(app.RefresherConfig{
		Interval: c.cfg.RefreshInterval,
		Once:     c.cfg.Once,
	}, app.RefreshAll(d.repo.GetAll), c.logger, d.metrics)

	if c.cfg.Once {
		return refresher.Run(ctx)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if c.cfg.MetricsAddr != "" {
		srv := newMetricsServer(c.cfg.MetricsAddr, d.registry)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.logger.Info("serving metrics", log.String("addr", c.cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.logger.Error("metrics server failed", log.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if watch && d.watcher != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.watcher.Watch(watchCtx, func() {
				c.logger.Info("cache file changed on disk")
			})
			if err != nil {
				c.logger.Warn("cache file watch stopped", log.Err(err))
			}
		}()
	}

	if err := refresher.Start(ctx); err != nil {
		return err
	}
	c.logger.Info("sync started", log.String("refresher", refresher.String()))

	select {
	case <-ctx.Done():
		c.logger.Info("received signal, stopping...")
	case err := <-refresher.Done():
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return refresher.Stop(shutdownTimeout)
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
