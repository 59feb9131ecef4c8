package acceptor

import (
	"bufio"
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// echoHandler echoes one line per read until the peer closes.
func echoHandler(_ context.Context, conn net.Conn) {
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		if _, err := conn.Write([]byte(line)); err != nil {
			return
		}
	}
}

// TestServe_ConcurrentConnections checks each connection gets its own handler.
func TestServe_ConcurrentConnections(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lis, err := Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)

	go func() { done <- Serve(ctx, lis, "echo", echoHandler) }()

	first, err := net.Dial("tcp", lis.Addr().String())
	require.NoError(t, err)

	defer first.Close()

	second, err := net.Dial("tcp", lis.Addr().String())
	require.NoError(t, err)

	defer second.Close()

	// The second connection is served while the first stays idle.
	_, err = second.Write([]byte("ping\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(second).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ping\n", line)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	// Open connections were closed by the shutdown.
	_ = first.SetReadDeadline(time.Now().Add(time.Second))
	_, err = first.Read(make([]byte, 1))
	require.Error(t, err)
}

// TestServe_ClosesConnectionAfterHandler verifies the acceptor owns connection cleanup.
func TestServe_ClosesConnectionAfterHandler(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lis, err := Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	var handled atomic.Int32

	go func() {
		_ = Serve(ctx, lis, "noop", func(context.Context, net.Conn) { handled.Add(1) })
	}()

	conn, err := net.Dial("tcp", lis.Addr().String())
	require.NoError(t, err)

	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(make([]byte, 1))
	require.Error(t, err)
	require.Equal(t, int32(1), handled.Load())
}

// TestListen_BadAddress reports bind failures.
func TestListen_BadAddress(t *testing.T) {
	t.Parallel()

	_, err := Listen(context.Background(), "127.0.0.1:-1")
	require.Error(t, err)
}
