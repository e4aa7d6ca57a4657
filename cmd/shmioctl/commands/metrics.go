package commands

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hpn777/shmio/internal/config"
	"github.com/hpn777/shmio/internal/metrics"
)

// startMetricsServer starts a /metrics HTTP server when an address is
// configured, preferring flagAddr (the subcommand's --metrics-addr flag)
// over cfg.MetricsAddr. The server is stopped when ctx is done; it is a
// no-op if no address is configured.
func startMetricsServer(ctx context.Context, logger log.Logger, cfg config.Config, flagAddr string, registry prometheus.Gatherer) {
	addr := flagAddr
	if addr == "" {
		addr = cfg.MetricsAddr
	}
	if addr == "" {
		return
	}

	srv := metrics.NewServer(addr, registry)
	errCh := srv.Start(ctx)
	level.Info(logger).Log("msg", "serving metrics", "addr", addr)

	go func() {
		if err := <-errCh; err != nil {
			level.Error(logger).Log("msg", "metrics server failed", "err", err)
		}
	}()
}
