package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/micromax/isara-emulator/internal/api/grpc/health"
)

var (
	// errNotServing is returned when the emulator reports it is not ready.
	errNotServing = errors.New("not serving")

	// healthService is the channel to check; empty checks the whole emulator.
	healthService string
	// healthTimeout bounds the check.
	healthTimeout time.Duration

	// healthcheckCmd queries the health endpoint of a running emulator.
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck <health-address>",
		Short: "Check whether a running emulator is ready.",
		Long: `Queries the gRPC health endpoint enabled with --health-addr and exits
non-zero unless the emulator, or the channel named with --service, is serving.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := health.Dial(cmd.Context(), args[0], health.WithCallTimeout(healthTimeout))
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			serving, err := client.Check(cmd.Context(), healthService)
			if err != nil {
				return err
			}

			if !serving {
				return fmt.Errorf("%s: %w", args[0], errNotServing)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "SERVING")

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	healthcheckCmd.Flags().StringVarP(&healthService, "service", "s", health.ServiceEmulator,
		"channel to check: operate, monitor or overlord")
	healthcheckCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", health.DefaultCallTimeout,
		"timeout of the check")
}
