package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/micromax/isara-emulator/internal/logger"
	"github.com/micromax/isara-emulator/internal/service/overlordcli"
	"github.com/micromax/isara-emulator/internal/version"
)

var (
	// errInvalidLogLevel is returned for an unknown --log-level value.
	errInvalidLogLevel = errors.New("invalid log level")

	// logLevel of the client's own diagnostics, printed to stderr.
	logLevel string
)

// rootCmd represents the interactive overlord client.
var rootCmd = &cobra.Command{
	Use:   "overlord-cli [address]",
	Short: "Watch and drive an emulator through its overlord channel.",
	Long: `Connects to the overlord side channel of a running emulator, prints every
attribute update it pushes and sends each typed line as a command:

  set_door_closed false
  set_manual_mode
  set_puck 5 true

The address defaults to ` + overlordcli.DefaultAddress + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		level, ok := logger.ParseLogLevel(logLevel)
		if !ok {
			return fmt.Errorf("%w: %q", errInvalidLogLevel, logLevel)
		}

		logger.SetLevel(level)

		opts := &overlordcli.Options{}
		if len(args) > 0 {
			opts.Address = args[0]
		}

		return overlordcli.Run(ctx, opts)
	},
}

// Execute runs the overlord-cli and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
}
