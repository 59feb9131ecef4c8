package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/micromax/isara-emulator/internal/config"
	"github.com/micromax/isara-emulator/internal/service/emulator"
	"github.com/micromax/isara-emulator/internal/version"
)

var (
	// options collects the flag values that override the configuration file.
	options emulator.Options

	// rootCmd represents the base command running the emulator.
	rootCmd = &cobra.Command{
		Use:   "isara-emulator",
		Short: "Emulate an ISARA sample changer robot.",
		Long: `Runs an emulated ISARA or ISARA2 sample changer.

The operate and monitor channels speak the robot's CR-terminated ASCII protocol
on the same ports as the real controller. The overlord side channel streams
device attributes as JSON and accepts commands that change what the robot
protocol cannot, such as the door state or the PLC key switch.

Settings are read from ` + config.DefaultConfigFilename + ` when present; flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return emulator.Run(ctx, &options)
		},
	}
)

// Execute runs the isara-emulator CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(healthcheckCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&options.ConfigPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&options.Model, "model", "", "device model to emulate: ISARA or ISARA2")
	flags.IntVarP(&options.OperatePort, "operate-port", "o", 0, "operate channel port")
	flags.IntVarP(&options.MonitorPort, "monitor-port", "m", 0, "monitor channel port")
	flags.IntVar(&options.OverlordPort, "overlord-port", 0, "overlord side channel port")
	flags.StringVar(&options.OverlordWebSocketAddress, "overlord-ws-addr", "",
		"serve overlord over WebSocket on this address")
	flags.StringVar(&options.HealthAddress, "health-addr", "", "serve gRPC health checks on this address")
	flags.StringVar(&options.MetricsAddress, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level: debug, info, warn or error")
}
