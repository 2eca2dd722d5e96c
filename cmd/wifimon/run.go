package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/wifimon/internal/config"
	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/led"
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/monitor"
	"codeberg.org/mutker/wifimon/internal/pid"
	"codeberg.org/mutker/wifimon/internal/probe"
	"codeberg.org/mutker/wifimon/internal/radio"
	"codeberg.org/mutker/wifimon/internal/report"
	"codeberg.org/mutker/wifimon/internal/sampler"
	"codeberg.org/mutker/wifimon/internal/status"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "wifimon",
		Short: "WiFi link monitor with a status LED",
		Long: `wifimon samples the signal strength and capabilities of the current
WiFi association, measures latency to a fixed host, and blinks the
connection status on an addressable LED.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go handleSignals(cancel)

			if once {
				return runOnce(ctx, cfg)
			}

			return run(ctx, cfg)
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())
	cmd.Flags().BoolVar(&once, "once", false, "Run a single monitor cycle and exit")

	return cmd
}

// setup loads the configuration and initializes the global logger
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Init(level, logger.IsService())
	logger.Debug().Msg("Config loaded")

	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	driver, err := newRadio(cfg)
	if err != nil {
		return err
	}
	defer closeRadio(driver)

	mon := newMonitor(cfg, driver)

	holder, err := startStatus(ctx, cfg, driver)
	if err != nil {
		return err
	}
	startLED(ctx, cfg, holder)

	if err := mon.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Exiting...")

	return nil
}

func runOnce(ctx context.Context, cfg *config.Config) error {
	driver, err := newRadio(cfg)
	if err != nil {
		return err
	}
	defer closeRadio(driver)

	mon := newMonitor(cfg, driver)
	defer func() {
		if err := mon.Close(); err != nil {
			logger.Debug().Err(err).Msg("Failed to release ping session")
		}
	}()

	if err := mon.RunOnce(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}

func newRadio(cfg *config.Config) (radio.Driver, error) {
	switch cfg.Radio.Driver {
	case config.RadioStatic:
		logger.Info().Msg("Using static radio driver")
		return &radio.StaticDriver{
			RSSI:           cfg.Radio.StaticRSSI,
			StationCount:   cfg.Radio.StaticStations,
			ListenInterval: cfg.Radio.ListenInterval,
		}, nil
	default:
		return radio.NewNL80211(radio.NL80211Config{
			Interface:      cfg.Radio.Interface,
			ListenInterval: cfg.Radio.ListenInterval,
		}, logger.Default().Component("WIFI"))
	}
}

func closeRadio(d radio.Driver) {
	if err := d.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to close radio driver")
	}
}

func newMonitor(cfg *config.Config, driver radio.Driver) *monitor.Monitor {
	log := logger.Default()
	r := report.New()

	var opts []report.Option
	if !cfg.Report.RequireThroughput {
		required := report.AllFields &^ report.FieldThroughput
		opts = append(opts, report.WithRequired(required))
		logger.Warn().
			Stringer("required", required).
			Msg("Throughput is not sampled; emitting reports without it. Throughput and jitter read 0")
	}

	agg := report.NewAggregator(r, report.NewLogSink(log.Component("REPORT")), log, opts...)
	smp := sampler.New(driver, r, log.Component("WIFI"))
	prober := probe.New(probeConfig(cfg), r, log)

	return monitor.New(smp, prober, agg, log, monitor.WithInterval(cfg.Monitor.Interval))
}

func probeConfig(cfg *config.Config) probe.Config {
	return probe.Config{
		Target:     cfg.Probe.Target,
		Count:      cfg.Probe.Count,
		Interval:   cfg.Probe.Interval,
		Timeout:    cfg.Probe.Timeout,
		Size:       cfg.Probe.Size,
		Privileged: cfg.Probe.Privileged,
	}
}

func startStatus(ctx context.Context, cfg *config.Config, driver radio.Driver) (*status.Holder, error) {
	initial, err := status.ParseState(cfg.Status.Initial)
	if err != nil {
		return nil, err
	}

	holder := status.NewHolder(initial)
	log := logger.Default().Component("STATUS")
	go status.LogChanges(ctx, holder, log)

	var d status.Driver
	switch cfg.Status.Driver {
	case config.StatusCycle:
		d = status.NewCycleDriver(holder, cfg.Status.Step, log)
	case config.StatusLink:
		d = status.NewLinkDriver(holder, driver, cfg.Status.Step, log)
	default:
		return holder, nil
	}

	logger.Debug().Str("driver", cfg.Status.Driver).Msg("Status driver started")
	go func() {
		if err := d.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Status driver stopped")
		}
	}()

	return holder, nil
}

// ledEnabled decides whether the LED task runs. The host strip renders
// on a terminal and is skipped without one.
func ledEnabled(cfg *config.Config, hasDisplay bool) bool {
	return cfg.LED.Enabled && hasDisplay
}

func startLED(ctx context.Context, cfg *config.Config, holder *status.Holder) {
	if !ledEnabled(cfg, led.HasDisplay()) {
		logger.Debug().Bool("enabled", cfg.LED.Enabled).Msg("LED indicator not started")
		return
	}

	strip, err := led.NewStrip(cfg.LED.Pin, cfg.LED.Count)
	if err != nil {
		fatal(err, "Failed to create LED strip")
	}

	ind := led.New(strip, holder, logger.Default().Component("LED"))
	if err := ind.Setup(); err != nil {
		fatal(err, "Failed to initialize LED strip")
	}

	go func() {
		if err := ind.Run(ctx); err != nil {
			fatal(err, "Failed to refresh LED strip")
		}
	}()
}

// fatal exits with the LED loop code, keeping the cause's own code in
// the wrapped error.
func fatal(err error, msg string) {
	logger.FatalWithCode(errors.New().Wrap(errors.ErrLEDLoop, err)).Msg(msg)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
