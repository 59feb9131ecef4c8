package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported device models.
const (
	// ModelIsara is the first ISARA model, the blue robot at BioMAX.
	ModelIsara = "ISARA"
	// ModelIsara2 is the ISARA2 model, the yellow robot at MicroMAX.
	ModelIsara2 = "ISARA2"
)

// Config holds the emulator process settings.
type Config struct {
	// Model selects the emulated device variant (ISARA or ISARA2).
	Model string `yaml:"model"`
	// ListenHost is the interface the three protocol ports bind to.
	ListenHost string `yaml:"listen_host"`
	// OperatePort is the TCP port of the operate channel.
	OperatePort int `yaml:"operate_port"`
	// MonitorPort is the TCP port of the monitor channel.
	MonitorPort int `yaml:"monitor_port"`
	// OverlordPort is the TCP port of the overlord side channel.
	OverlordPort int `yaml:"overlord_port"`
	// OverlordWebSocketAddress optionally serves overlord over WebSocket as well.
	OverlordWebSocketAddress string `yaml:"overlord_ws_addr"`
	// HealthAddress optionally serves the gRPC health checking protocol.
	HealthAddress string `yaml:"health_addr"`
	// MetricsAddress optionally serves Prometheus metrics on /metrics.
	MetricsAddress string `yaml:"metrics_addr"`
	// LogLevel is the minimum level of emitted log entries.
	LogLevel string `yaml:"log_level"`
	// ArmTravelTime is how long a trajectory takes at 100% speed.
	ArmTravelTime time.Duration `yaml:"arm_travel_time"`
	// LidStepInterval is the pause between two unit steps of the dewar lid.
	LidStepInterval time.Duration `yaml:"lid_step_interval"`
}

const (
	// DefaultConfigFilename is the default filename for emulator settings.
	DefaultConfigFilename = "isara-emulator.yaml"

	// DefaultListenHost binds all interfaces, as the real robot controller does.
	DefaultListenHost = "0.0.0.0"

	// DefaultOperatePort is the operate port of the real robot.
	DefaultOperatePort = 10000
	// DefaultMonitorPort is the monitor port of the real robot.
	DefaultMonitorPort = 1000
	// DefaultOverlordPort is the overlord side channel port.
	DefaultOverlordPort = 1111

	// DefaultArmTravelTime is the trajectory duration at full speed.
	DefaultArmTravelTime = 500 * time.Millisecond
	// DefaultLidStepInterval is the time the lid spends on each of its ten steps.
	DefaultLidStepInterval = 600 * time.Millisecond

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrUnknownModel is returned for a model name other than ISARA or ISARA2.
	ErrUnknownModel = errors.New("unknown device model")
	// ErrInvalidPort is returned for a port outside 1..65535.
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidDuration is returned for non-positive timing settings.
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Default returns the settings of an ISARA2 on the real robot's ports.
func Default() *Config {
	return &Config{
		Model:           ModelIsara2,
		ListenHost:      DefaultListenHost,
		OperatePort:     DefaultOperatePort,
		MonitorPort:     DefaultMonitorPort,
		OverlordPort:    DefaultOverlordPort,
		LogLevel:        "info",
		ArmTravelTime:   DefaultArmTravelTime,
		LidStepInterval: DefaultLidStepInterval,
	}
}

// Load reads configuration from the provided path on top of Default().
// An empty path or a missing file at the default location yields the defaults,
// an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return cfg, nil
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills zero values with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}

	if cfg.Model != ModelIsara && cfg.Model != ModelIsara2 {
		return fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}

	if cfg.ListenHost == "" {
		cfg.ListenHost = defaults.ListenHost
	}

	for _, port := range []struct {
		name  string
		value *int
		def   int
	}{
		{"operate_port", &cfg.OperatePort, defaults.OperatePort},
		{"monitor_port", &cfg.MonitorPort, defaults.MonitorPort},
		{"overlord_port", &cfg.OverlordPort, defaults.OverlordPort},
	} {
		if *port.value == 0 {
			*port.value = port.def
		}

		if *port.value < 0 || *port.value > 65535 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidPort, port.name, *port.value)
		}
	}

	for _, addr := range []struct {
		name  string
		value string
	}{
		{"overlord_ws_addr", cfg.OverlordWebSocketAddress},
		{"health_addr", cfg.HealthAddress},
		{"metrics_addr", cfg.MetricsAddress},
	} {
		if addr.value == "" {
			continue
		}

		if _, _, err := net.SplitHostPort(addr.value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", addr.name, addr.value, err)
		}
	}

	if cfg.ArmTravelTime == 0 {
		cfg.ArmTravelTime = defaults.ArmTravelTime
	}

	if cfg.LidStepInterval == 0 {
		cfg.LidStepInterval = defaults.LidStepInterval
	}

	if cfg.ArmTravelTime < 0 || cfg.LidStepInterval < 0 {
		return ErrInvalidDuration
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	return nil
}

// OperateAddress returns the listen address of the operate channel.
func (c *Config) OperateAddress() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.OperatePort))
}

// MonitorAddress returns the listen address of the monitor channel.
func (c *Config) MonitorAddress() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.MonitorPort))
}

// OverlordAddress returns the listen address of the overlord side channel.
func (c *Config) OverlordAddress() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.OverlordPort))
}
