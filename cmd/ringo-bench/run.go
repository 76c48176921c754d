package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/FerroO2000/ringo/internal"
	"github.com/FerroO2000/ringo/internal/bench"
	"github.com/FerroO2000/ringo/internal/config"
	"github.com/spf13/cobra"
)

var errCorruptedLines = errors.New("some lines were not received unchanged")

func (a *app) runCmd() *cobra.Command {
	defaults := bench.NewConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the line workload",
		Long: `Generates random printable lines, feeds them in chunks to the line assembler
and reads them back. The command fails when a line is lost, truncated or altered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.Uint32("capacity", defaults.Capacity, "ring buffer capacity, a power of two")
	flags.Int("lines", defaults.Lines, "number of generated lines")
	flags.Int("max-line", defaults.MaxLineLength, "maximum line length, at most capacity - 2")
	flags.Int("chunk", defaults.ChunkSize, "maximum number of bytes fed at once")
	flags.Bool("concurrent", defaults.Concurrent, "feed and read the lines from two goroutines")
	flags.Bool("drop-control", defaults.DropControl, "inject control characters and filter them out")
	flags.Uint64("seed", defaults.Seed, "seed of the line generator")

	return cmd
}

func (a *app) run(cmd *cobra.Command) error {
	cfg := bench.NewConfig()
	if err := a.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode the configuration: %w", err)
	}

	config.NewValidator(internal.NewTelemetry("config", "bench")).Validate(cfg)

	runner, err := bench.NewRunner(cfg)
	if err != nil {
		return err
	}
	runner.Init()

	report, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	slog.Info("report",
		"generated_lines", report.GeneratedLines,
		"received_lines", report.ReceivedLines,
		"mismatched_lines", report.MismatchedLines,
		"truncated_lines", report.TruncatedLines,
		"fed_bytes", report.FedBytes,
		"filtered_bytes", report.FilteredBytes,
		"elapsed", report.Elapsed,
		"throughput_mib_s", report.Throughput()/(1<<20),
	)

	if !report.OK() {
		return errCorruptedLines
	}

	return nil
}
