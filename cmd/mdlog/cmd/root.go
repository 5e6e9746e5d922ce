package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/yanun0323/logs"

	"mdlog/internal/config"
	"mdlog/internal/obs"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfg      config.Config
	metrics  *obs.Metrics
	server   *http.Server
	profiler *pyroscope.Profiler
}

var state = &app{metrics: obs.NewMetrics()}

var rootCmd = &cobra.Command{
	Use:   "mdlog",
	Short: "Inspect, validate and export memory-mapped market data logs",
	Long: `mdlog reads the per-day orders.bin, transactions.bin, ticks.bin and
snapshots.bin files written by the market data engine. Files are mapped
read-only and may be read while the engine is still appending.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML config file (MDLOG_* environment variables override it)")
	pf.StringP("data-dir", "d", "", "data root, or the day directory itself when --day is empty")
	pf.String("day", "", "trading day YYYYMMDD, selects <data-dir>/YYYY/MM/DD")
	pf.String("metrics-addr", "", "serve prometheus metrics on this address")
	pf.String("pyroscope", "", "pyroscope server address for continuous profiling")
}

func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	override(cmd, "data-dir", &cfg.DataDir)
	override(cmd, "day", &cfg.Day)
	override(cmd, "metrics-addr", &cfg.MetricsAddr)
	override(cmd, "pyroscope", &cfg.PyroscopeAddr)
	if err := cfg.Check(); err != nil {
		return err
	}
	state.cfg = cfg

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(obs.NewCollector(state.metrics))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		state.server = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := state.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logs.Errorf("metrics server stopped, err: %+v", err)
			}
		}()
		logs.Infof("metrics served on %s/metrics", cfg.MetricsAddr)
	}

	if cfg.PyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "mdlog." + cmd.Name(),
			ServerAddress:   cfg.PyroscopeAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		state.profiler = profiler
	}
	return nil
}

func teardown(*cobra.Command, []string) error {
	if state.profiler != nil {
		_ = state.profiler.Stop()
	}
	if state.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return state.server.Shutdown(ctx)
	}
	return nil
}

func override(cmd *cobra.Command, flag string, dst *string) {
	if cmd.Flags().Changed(flag) {
		*dst, _ = cmd.Flags().GetString(flag)
	}
}
