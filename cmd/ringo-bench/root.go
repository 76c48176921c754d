package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName   = "ringo-bench"
	envPrefix = "RINGO"

	flagConfig          = "config"
	flagLogLevel        = "log-level"
	flagOtelEndpoint    = "otel-endpoint"
	flagOtelLogEndpoint = "otel-log-endpoint"

	shutdownTimeout = 5 * time.Second
)

// app holds the state shared by the commands.
type app struct {
	v *viper.Viper

	cfgFile string

	tel *telemetry
}

// execute runs the command line and shuts down the telemetry providers,
// even when the command fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{
		v: viper.New(),
	}

	rootCmd := a.rootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)

	return errors.Join(err, a.close(ctx))
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Ring buffer line assembly workload.",
		Long: `Pushes random lines through a fixed capacity ring buffer
and checks that every line is read back unchanged.`,

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, flagConfig, "", "config file (yaml, json or toml)")
	flags.String(flagLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(flagOtelEndpoint, "", "OTLP gRPC endpoint for traces and metrics, disabled when empty")
	flags.String(flagOtelLogEndpoint, "localhost:4318", "OTLP HTTP endpoint for logs")

	rootCmd.AddCommand(a.runCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// initialize loads the configuration, then sets up logging and telemetry.
func (a *app) initialize(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)

		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString(flagLogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	otelEndpoint := a.v.GetString(flagOtelEndpoint)
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level, otelEndpoint != ""))

	if otelEndpoint == "" {
		return nil
	}

	tel, err := newTelemetry(cmd.Context(), otelEndpoint, a.v.GetString(flagOtelLogEndpoint))
	if err != nil {
		return err
	}
	a.tel = tel

	slog.Info("telemetry enabled", "endpoint", otelEndpoint)

	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.tel == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return a.tel.Close(ctx)
}
