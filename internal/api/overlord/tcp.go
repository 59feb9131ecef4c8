package overlord

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/micromax/isara-emulator/internal/api/acceptor"
	"github.com/micromax/isara-emulator/internal/metrics"
)

// lineConn frames messages as newline terminated lines over a stream.
type lineConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewLineConn wraps a stream connection in newline framing.
func NewLineConn(conn net.Conn) Conn {
	return &lineConn{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

// ReadMessage returns the next line without its terminator. A final line the
// peer did not terminate before closing is still returned.
func (c *lineConn) ReadMessage() ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}

	return bytes.TrimRight(line, "\r\n"), nil
}

// WriteMessage writes data followed by a newline.
func (c *lineConn) WriteMessage(data []byte) error {
	msg := make([]byte, 0, len(data)+1)
	msg = append(msg, data...)
	msg = append(msg, '\n')

	if _, err := c.conn.Write(msg); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (c *lineConn) Close() error {
	return c.conn.Close()
}

// NewTCPHandler returns a connection handler serving overlord sessions on raw TCP.
func NewTCPHandler(device Device, m *metrics.Metrics) acceptor.Handler {
	return func(ctx context.Context, conn net.Conn) {
		_ = Serve(ctx, device, NewLineConn(conn), m)
	}
}
