package main

import (
	"context"
	"fmt"

	"codeberg.org/mutker/wifimon/internal/errors"
	"codeberg.org/mutker/wifimon/internal/logger"
	"codeberg.org/mutker/wifimon/internal/probe"
	"codeberg.org/mutker/wifimon/internal/report"
	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run one latency probe against the configured target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go handleSignals(cancel)

			pc := probeConfig(cfg)
			if count > 0 {
				pc.Count = count
			}

			r := report.New()
			p := probe.New(pc, r, logger.Default())
			defer p.Close()

			if err := p.Probe(ctx); err != nil {
				return err
			}
			if err := p.Wait(ctx); err != nil {
				return nil
			}

			snap := r.Snapshot()
			if !snap.Received.Has(report.FieldLatency) {
				return errors.New().WithData(errors.ErrTimeout, pc.Target)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ms\n", pc.Target, snap.LatencyMs)

			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Number of echo requests (default from config)")

	return cmd
}
