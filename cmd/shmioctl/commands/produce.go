package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

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
	produceCapacity    uint64
	produceDebug       bool
	produceMetricsAddr string
)

var produceCmd = &cobra.Command{
	Use:   "produce <path>",
	Short: "Append one frame per line read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduce,
}

func init() {
	produceCmd.Flags().Uint64Var(&produceCapacity, "capacity", 1<<20, "capacity in bytes when creating a new segment")
	produceCmd.Flags().BoolVar(&produceDebug, "debug-checks", false, "verify frame integrity on every allocation")
	produceCmd.Flags().StringVar(&produceMetricsAddr, "metrics-addr", "", "address to serve /metrics on (default: cfg.MetricsAddr, or disabled)")
}

func runProduce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)
	runID := uuid.New().String()

	registry := prometheus.NewRegistry()
	segMetrics := metrics.NewSegment(registry, runID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startMetricsServer(ctx, logger, cfg, produceMetricsAddr, registry)

	log, err := shmio.OpenAppendLog(shmio.AppendLogOptions{
		Path:          args[0],
		CapacityBytes: produceCapacity,
		DebugChecks:   produceDebug || cfg.DebugChecks,
	})
	if err != nil {
		return fmt.Errorf("open append log: %w", err)
	}
	defer log.Close()

	level.Info(logger).Log("msg", "producing", "run_id", runID, "path", args[0])

	scanner := bufio.NewScanner(os.Stdin)
	var count int
	for scanner.Scan() {
		line := scanner.Bytes()
		if err := log.Append(line); err != nil {
			if errors.Is(err, shmio.ErrSegmentFull) {
				segMetrics.SegmentFullErrs.Inc()
			}
			return fmt.Errorf("append line %d: %w", count+1, err)
		}
		segMetrics.FramesWritten.Inc()
		segMetrics.BytesCommitted.Add(float64(len(line) + shmio.FrameMetadataBytes))
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	level.Info(logger).Log("msg", "done", "run_id", runID, "frames", count)
	return nil
}
