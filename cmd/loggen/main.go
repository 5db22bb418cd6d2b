// Horus - HTTP Access Log Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/horus

// Command loggen generates synthetic access-log traffic with injected
// attack campaigns.
//
//	loggen --batches 20 --format combined > access.log
//	loggen --output http --url http://localhost:8080/api/v1/log --interval 30s
//	loggen --output nats --nats-url nats://127.0.0.1:4222   # built with -tags nats
//	loggen campaigns
//
// Without --interval batches are back-filled as fast as the output accepts
// them, stamped consecutively up to now. With --interval each batch is
// stamped with the wall clock and the run continues until interrupted or
// --batches is reached.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/horus/internal/ingest"
	"github.com/tomtom215/horus/internal/logging"
	"github.com/tomtom215/horus/internal/simulator"
)

type options struct {
	output    string
	format    string
	url       string
	natsURL   string
	topic     string
	batches   int
	interval  time.Duration
	window    time.Duration
	chance    float64
	campaigns []string
	start     string
	geoip     string
	seed      uint64
	logLevel  string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "loggen",
		Short:         "Generate synthetic access-log traffic for Horus",
		Long:          "loggen produces normal HTTP access-log traffic with randomly started attack campaigns and writes it to stdout, the Horus ingest endpoint or NATS.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !logging.ValidLevel(opts.logLevel) {
				return fmt.Errorf("invalid --log-level %q", opts.logLevel)
			}
			// stdout may carry the generated events; logs go to stderr.
			logging.Init(logging.Config{
				Level:     opts.logLevel,
				Format:    "console",
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.batches == 0 && opts.interval == 0 {
				return errors.New("--batches 0 requires --interval")
			}
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level")

	local := cmd.Flags()
	local.StringVarP(&opts.output, "output", "o", "stdout", "output: stdout, http or nats")
	local.StringVar(&opts.format, "format", simulator.FormatJSON, "stdout format: json or combined")
	local.StringVar(&opts.url, "url", "http://localhost:8080/api/v1/log", "ingest endpoint for --output http")
	local.StringVar(&opts.natsURL, "nats-url", "nats://127.0.0.1:4222", "NATS server for --output nats")
	local.StringVar(&opts.topic, "topic", "horus.events", "ingest topic for --output nats")
	local.IntVarP(&opts.batches, "batches", "n", 10, "number of batches (0 = until interrupted)")
	local.DurationVar(&opts.interval, "interval", 0, "real-time pacing between batches (0 = back-fill)")
	local.DurationVar(&opts.window, "window", 30*time.Second, "time span of one batch")
	local.Float64Var(&opts.chance, "campaign-chance", 0.15, "probability per batch that a campaign starts")
	local.StringSliceVar(&opts.campaigns, "campaigns", nil, "campaigns allowed to start (default all)")
	local.StringVar(&opts.start, "start", "", "RFC3339 start of a back-fill (default batches*window ago)")
	local.StringVar(&opts.geoip, "geoip", "", "GeoLite2-City-Blocks-IPv4 CSV for source addresses")
	local.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")

	cmd.AddCommand(newCampaignsCommand())
	return cmd
}

func newCampaignsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "campaigns",
		Short: "List the attack campaigns loggen can inject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range simulator.AllCampaigns {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (o *options) generatorConfig() (simulator.Config, error) {
	cfg := simulator.DefaultConfig()
	cfg.BatchWindow = o.window
	cfg.StartChance = o.chance
	cfg.Seed = o.seed
	for _, name := range o.campaigns {
		c, err := simulator.ParseCampaign(name)
		if err != nil {
			return cfg, err
		}
		cfg.Campaigns = append(cfg.Campaigns, c)
	}
	return cfg, nil
}

func (o *options) runConfig() (simulator.RunConfig, error) {
	rc := simulator.RunConfig{Batches: o.batches, Interval: o.interval}
	if o.start != "" {
		ts, err := time.Parse(time.RFC3339, o.start)
		if err != nil {
			return rc, fmt.Errorf("--start: %w", err)
		}
		rc.Start = ts
	}
	return rc, nil
}

func (o *options) sink(stdout io.Writer) (simulator.Sink, error) {
	switch o.output {
	case "stdout":
		return simulator.NewWriterSink(stdout, o.format)
	case "http":
		return simulator.NewHTTPSink(o.url, 10*time.Second), nil
	case "nats":
		pub, err := ingest.NewNATSPublisher(o.natsURL, ingest.NewLogger())
		if err != nil {
			return nil, err
		}
		return simulator.NewPublisherSink(pub, o.topic), nil
	default:
		return nil, fmt.Errorf("unknown output %q", o.output)
	}
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	genCfg, err := opts.generatorConfig()
	if err != nil {
		return err
	}
	runCfg, err := opts.runConfig()
	if err != nil {
		return err
	}

	var geo *simulator.GeoIP
	if opts.geoip != "" {
		geo, err = simulator.LoadGeoIP(opts.geoip)
		if err != nil {
			return err
		}
		logging.Info().Str("path", opts.geoip).Int("networks", geo.Len()).Msg("GeoIP blocks loaded")
	}

	sink, err := opts.sink(stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing output")
		}
	}()

	stats, err := simulator.Run(ctx, simulator.NewGenerator(genCfg, geo), sink, runCfg)
	logging.Info().
		Int("batches", stats.Batches).
		Int("events", stats.Events).
		Int("failed", stats.Failed).
		Msg("Generation finished")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loggen:", err)
		os.Exit(1)
	}
}
