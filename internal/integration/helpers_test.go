package integration

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/micromax/isara-emulator/internal/api/overlord"
	"github.com/micromax/isara-emulator/internal/config"
	"github.com/micromax/isara-emulator/internal/service/emulator"
)

const (
	testTimeout      = 5 * time.Second
	testTravelTime   = 20 * time.Millisecond
	testStepInterval = 5 * time.Millisecond
)

// startEmulator runs an emulator of model on loopback ports until the test ends.
func startEmulator(t *testing.T, model string) *emulator.Emulator {
	t.Helper()

	cfg := config.Default()
	cfg.Model = model
	cfg.ListenHost = "127.0.0.1"
	cfg.OperatePort = 0
	cfg.MonitorPort = 0
	cfg.OverlordPort = 0
	cfg.ArmTravelTime = testTravelTime
	cfg.LidStepInterval = testStepInterval

	ctx, cancel := context.WithCancel(context.Background())

	emu, err := emulator.New(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() { done <- emu.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	return emu
}

// robotClient talks the CR-terminated protocol of the operate and monitor channels.
type robotClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dialRobot(t *testing.T, address string) *robotClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", address, testTimeout)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	return &robotClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

// call sends a command and returns the reply without its terminator.
func (c *robotClient) call(command string) string {
	c.t.Helper()

	reply, err := c.tryCall(command)
	require.NoError(c.t, err)

	return reply
}

func (c *robotClient) tryCall(command string) (string, error) {
	if err := c.conn.SetDeadline(time.Now().Add(testTimeout)); err != nil {
		return "", err
	}

	if _, err := c.conn.Write([]byte(command + "\r")); err != nil {
		return "", err
	}

	reply, err := c.reader.ReadString('\r')
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(reply, "\r"), nil
}

// fields splits a "name(a,b,...)" record into its fields.
func fields(t *testing.T, name, record string) []string {
	t.Helper()

	require.True(t, strings.HasPrefix(record, name+"("), record)
	require.True(t, strings.HasSuffix(record, ")"), record)

	return strings.Split(strings.TrimSuffix(strings.TrimPrefix(record, name+"("), ")"), ",")
}

// overlordClient is a test harness connected to the overlord side channel.
type overlordClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dialOverlord(t *testing.T, address string) *overlordClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", address, testTimeout)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	return &overlordClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *overlordClient) send(command string, args ...string) {
	c.t.Helper()

	data, err := overlord.EncodeRequest(overlord.Request{Command: command, Args: args})
	require.NoError(c.t, err)

	_, err = c.conn.Write(append(data, '\n'))
	require.NoError(c.t, err)
}

func (c *overlordClient) receive() overlord.Message {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(testTimeout)))

	line, err := c.reader.ReadBytes('\n')
	require.NoError(c.t, err)

	msg, err := overlord.DecodeMessage(line)
	require.NoError(c.t, err)

	return msg
}
