package emulator

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/micromax/isara-emulator/internal/api/grpc/health"
	"github.com/micromax/isara-emulator/internal/config"
)

const testTimeout = 5 * time.Second

// loopbackConfig binds every endpoint to an ephemeral loopback port.
func loopbackConfig() *config.Config {
	cfg := config.Default()
	cfg.ListenHost = "127.0.0.1"
	cfg.OperatePort = 0
	cfg.MonitorPort = 0
	cfg.OverlordPort = 0
	cfg.OverlordWebSocketAddress = "127.0.0.1:0"
	cfg.HealthAddress = "127.0.0.1:0"
	cfg.MetricsAddress = "127.0.0.1:0"
	cfg.ArmTravelTime = 10 * time.Millisecond
	cfg.LidStepInterval = 10 * time.Millisecond

	return cfg
}

// startEmulator runs an emulator until the test ends.
func startEmulator(t *testing.T) (*Emulator, context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	emu, err := New(ctx, loopbackConfig())
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() { done <- emu.Run(ctx) }()

	t.Cleanup(cancel)

	return emu, cancel, done
}

func TestEmulator_ServesEndpoints(t *testing.T) {
	t.Parallel()

	emu, _, _ := startEmulator(t)

	require.NotEmpty(t, emu.WebSocketAddr())

	conn, err := net.DialTimeout("tcp", emu.MonitorAddr(), testTimeout)
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetDeadline(time.Now().Add(testTimeout)))

	_, err = conn.Write([]byte("message\r"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\r')
	require.NoError(t, err)
	require.Equal(t, "System OK for operation\r", reply)

	client, err := health.Dial(context.Background(), emu.HealthAddr())
	require.NoError(t, err)

	defer func() { _ = client.Close() }()

	require.Eventually(t, func() bool {
		serving, err := client.Check(context.Background(), health.ServiceEmulator)

		return err == nil && serving
	}, testTimeout, 10*time.Millisecond)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet,
		"http://"+emu.MetricsAddr()+metricsPath, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `isara_emulator_commands_total{channel="monitor",command="message"} 1`)
}

func TestEmulator_StopsOnCancel(t *testing.T) {
	t.Parallel()

	emu, cancel, done := startEmulator(t)

	conn, err := net.DialTimeout("tcp", emu.OperateAddr(), testTimeout)
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(testTimeout):
		t.Fatal("emulator did not stop")
	}

	// The open connection is closed on shutdown.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testTimeout)))

	_, err = conn.Read(make([]byte, 1))
	require.Error(t, err)
}

// TestNew_AddressInUse fails without leaking the listeners already bound.
func TestNew_AddressInUse(t *testing.T) {
	t.Parallel()

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() { _ = busy.Close() }()

	cfg := loopbackConfig()
	cfg.MetricsAddress = busy.Addr().String()

	_, err = New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNew_UnknownModel(t *testing.T) {
	t.Parallel()

	cfg := loopbackConfig()
	cfg.Model = "ISARA3"

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, config.ErrUnknownModel)
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	applyOverrides(cfg, &Options{
		Model:          config.ModelIsara,
		OperatePort:    20000,
		HealthAddress:  "127.0.0.1:9000",
		MetricsAddress: "127.0.0.1:9001",
		LogLevel:       "debug",
	})

	require.Equal(t, config.ModelIsara, cfg.Model)
	require.Equal(t, 20000, cfg.OperatePort)
	require.Equal(t, config.DefaultMonitorPort, cfg.MonitorPort)
	require.Equal(t, config.DefaultOverlordPort, cfg.OverlordPort)
	require.Equal(t, "127.0.0.1:9000", cfg.HealthAddress)
	require.Equal(t, "127.0.0.1:9001", cfg.MetricsAddress)
	require.Empty(t, cfg.OverlordWebSocketAddress)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestRun_InvalidSettings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	err := Run(context.Background(), &Options{ConfigPath: path, LogLevel: "loud"})
	require.ErrorIs(t, err, ErrInvalidLogLevel)

	err = Run(context.Background(), &Options{ConfigPath: path, Model: "ISARA3"})
	require.ErrorIs(t, err, config.ErrUnknownModel)

	err = Run(context.Background(), &Options{ConfigPath: filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
}
