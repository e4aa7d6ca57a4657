package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hpn777/shmio"
	"github.com/hpn777/shmio/internal/config"
	"github.com/hpn777/shmio/internal/logging"
	"github.com/hpn777/shmio/internal/metrics"
)

var (
	consumeFollow      bool
	consumePollPeriod  time.Duration
	consumeMaxBatch    uint32
	consumeMetricsAddr string
)

var consumeCmd = &cobra.Command{
	Use:   "consume <path>",
	Short: "Print committed frames as lines to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runConsume,
}

func init() {
	consumeCmd.Flags().BoolVarP(&consumeFollow, "follow", "f", false, "keep polling for new frames instead of exiting at the current committed size")
	consumeCmd.Flags().DurationVar(&consumePollPeriod, "poll", 100*time.Millisecond, "poll interval when --follow is set; shmio has no blocking wait")
	consumeCmd.Flags().Uint32Var(&consumeMaxBatch, "max-batch", shmio.DefaultMaxMessages, "maximum frames per NextBatch call")
	consumeCmd.Flags().StringVar(&consumeMetricsAddr, "metrics-addr", "", "address to serve /metrics on (default: cfg.MetricsAddr, or disabled)")
}

func runConsume(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)
	runID := uuid.New().String()

	registry := prometheus.NewRegistry()
	segMetrics := metrics.NewSegment(registry, runID)

	seg, err := shmio.Open(shmio.OpenOptions{Path: args[0], DebugChecks: cfg.DebugChecks})
	if err != nil {
		return fmt.Errorf("open segment: %w", err)
	}
	defer seg.Close()

	it, err := seg.CreateIterator()
	if err != nil {
		return fmt.Errorf("create iterator: %w", err)
	}
	defer it.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	startMetricsServer(ctx, logger, cfg, consumeMetricsAddr, registry)

	level.Info(logger).Log("msg", "consuming", "run_id", runID, "path", args[0])

	for {
		frames, err := it.NextBatch(shmio.BatchOptions{MaxMessages: consumeMaxBatch, DebugChecks: cfg.DebugChecks})
		if err != nil {
			if errors.Is(err, shmio.ErrFrameCorrupt) {
				segMetrics.FrameCorruptErrs.Inc()
			}
			level.Error(logger).Log("msg", "batch failed", "err", err)
			return err
		}

		for _, frame := range frames {
			os.Stdout.Write(frame)
			os.Stdout.Write([]byte("\n"))
		}
		segMetrics.FramesRead.Add(float64(len(frames)))

		if len(frames) == 0 {
			if !consumeFollow {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(consumePollPeriod):
			}
		}
	}
}
