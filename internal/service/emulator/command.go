package emulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/micromax/isara-emulator/internal/config"
	"github.com/micromax/isara-emulator/internal/logger"
	"github.com/micromax/isara-emulator/internal/version"
)

// Options controls the emulator process. Zero values keep the configured setting.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Model overrides the emulated model.
	Model string
	// OperatePort overrides the operate channel port.
	OperatePort int
	// MonitorPort overrides the monitor channel port.
	MonitorPort int
	// OverlordPort overrides the overlord side channel port.
	OverlordPort int
	// OverlordWebSocketAddress enables overlord over WebSocket on this address.
	OverlordWebSocketAddress string
	// HealthAddress enables the gRPC health endpoint on this address.
	HealthAddress string
	// MetricsAddress enables the Prometheus endpoint on this address.
	MetricsAddress string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// ErrInvalidLogLevel is returned for a log level zap does not know.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Run loads the settings, applies the overrides and runs the emulator until ctx is done.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "isara-emulator")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(settings, opts)

	if err := config.Validate(settings); err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}

	level, ok := logger.ParseLogLevel(settings.LogLevel)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, settings.LogLevel)
	}

	logger.SetLevel(level)
	logger.InfoKV(ctx, "Starting emulator", "version", version.Short(), "model", settings.Model)

	emu, err := New(ctx, settings)
	if err != nil {
		return err
	}

	return emu.Run(ctx)
}

// applyOverrides copies every set option onto cfg.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Model != "" {
		cfg.Model = opts.Model
	}

	if opts.OperatePort != 0 {
		cfg.OperatePort = opts.OperatePort
	}

	if opts.MonitorPort != 0 {
		cfg.MonitorPort = opts.MonitorPort
	}

	if opts.OverlordPort != 0 {
		cfg.OverlordPort = opts.OverlordPort
	}

	if opts.OverlordWebSocketAddress != "" {
		cfg.OverlordWebSocketAddress = opts.OverlordWebSocketAddress
	}

	if opts.HealthAddress != "" {
		cfg.HealthAddress = opts.HealthAddress
	}

	if opts.MetricsAddress != "" {
		cfg.MetricsAddress = opts.MetricsAddress
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
}
