package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cxd309/accel-profile/internal/chart"
	"github.com/cxd309/accel-profile/internal/clock"
	"github.com/cxd309/accel-profile/internal/logging"
	"github.com/cxd309/accel-profile/internal/metrics"
	"github.com/cxd309/accel-profile/internal/planfile"
	"github.com/cxd309/accel-profile/internal/sim"
)

type simOptions struct {
	format      string
	pretty      bool
	plotPath    string
	realtime    bool
	metricsAddr string
}

func newSimCmd(ro *rootOptions) *cobra.Command {
	var opts simOptions
	cmd := &cobra.Command{
		Use:   "sim [input]",
		Short: "Run a simulation and print the JSON log",
		Long: `Run a profile simulation described by a JSON or YAML input document read
from the given file, or from stdin when no file is given.

Examples:
  # Offline run, pretty-printed
  accelprofile sim examples/launch.json --pretty

  # YAML from stdin, with a chart
  accelprofile sim --format yaml --plot out/run.png < launch.yaml

  # Pace ticks in real time and expose metrics
  accelprofile sim launch.json --realtime --metrics-addr :9464
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(cmd, args, ro, opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "Input format: json or yaml (default from file extension, else json)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the JSON log")
	cmd.Flags().StringVar(&opts.plotPath, "plot", "", "Write a PNG chart of the run to this path")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "Pace ticks with the wall clock instead of stepping instantly")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	return cmd
}

func runSim(cmd *cobra.Command, args []string, ro *rootOptions, opts simOptions) error {
	logger := logging.Setup(ro.logLevel, cmd.ErrOrStderr())

	input, err := readInput(cmd.InOrStdin(), args, opts.format)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("metrics server shutdown failed")
			}
		}()
	}

	s, err := sim.New(input, sim.WithLogger(logger), sim.WithMetrics(collector))
	if err != nil {
		return err
	}

	var simLog sim.SimulationLog
	if opts.realtime {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		simLog, err = s.RunRealtime(ctx, clock.Real{})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	} else {
		simLog = s.Run()
	}

	var out []byte
	if opts.pretty {
		out, err = json.MarshalIndent(simLog, "", "  ")
	} else {
		out, err = json.Marshal(simLog)
	}
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if opts.plotPath != "" {
		if err := chart.SaveRun(simLog, opts.plotPath); err != nil {
			return fmt.Errorf("writing chart: %w", err)
		}
		logger.Info().Str("path", opts.plotPath).Msg("chart written")
	}
	return nil
}

// readInput reads the simulation input from the file in args, or stdin.
// YAML documents are converted to JSON before decoding.
func readInput(stdin io.Reader, args []string, format string) (sim.SimulationInput, error) {
	var (
		data []byte
		err  error
	)
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
		if format == "" {
			if f, ferr := planfile.FormatFromPath(args[0]); ferr == nil {
				format = string(f)
			}
		}
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return sim.SimulationInput{}, fmt.Errorf("error reading input: %w", err)
	}
	if format == "" {
		format = string(planfile.FormatJSON)
	}

	jsonData, err := planfile.ToJSON(data, planfile.Format(format))
	if err != nil {
		return sim.SimulationInput{}, err
	}

	var input sim.SimulationInput
	if err := json.Unmarshal(jsonData, &input); err != nil {
		return sim.SimulationInput{}, fmt.Errorf("%w: %w", sim.ErrInvalidInput, err)
	}
	return input, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	return srv
}
