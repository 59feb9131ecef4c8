package isara

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/micromax/isara-emulator/internal/api/acceptor"
	"github.com/micromax/isara-emulator/internal/logger"
	"github.com/micromax/isara-emulator/internal/metrics"
)

// Channel names.
const (
	ChannelOperate = "operate"
	ChannelMonitor = "monitor"
)

// delimiter terminates both commands and replies.
const delimiter = '\r'

// ErrUnterminatedCommand is returned when the peer closes mid-command.
var ErrUnterminatedCommand = errors.New("connection closed inside a command")

// Dispatcher executes one command and returns the reply text.
// An error ends the connection.
type Dispatcher func(ctx context.Context, command string) (string, error)

// NewHandler returns a connection handler running the read-dispatch-write loop of a channel.
func NewHandler(channel string, dispatch Dispatcher, m *metrics.Metrics) acceptor.Handler {
	return func(ctx context.Context, conn net.Conn) {
		ctx = logger.WithKV(ctx, "channel", channel)

		m.ConnectionOpened(channel)
		defer m.ConnectionClosed(channel)

		logger.InfoKV(ctx, "New connection")

		err := Serve(ctx, conn, channel, dispatch, m)

		switch {
		case err == nil:
			logger.InfoKV(ctx, "Connection closed")
		case ctx.Err() != nil:
			logger.DebugKV(ctx, "Connection closed on shutdown", "error", err)
		default:
			m.ProtocolError(channel)
			logger.ErrorKV(ctx, "Dropping connection", "error", err)
		}
	}
}

// Serve runs the command loop on rw until the peer closes the connection
// (nil error) or a command cannot be handled.
func Serve(
	ctx context.Context,
	rw io.ReadWriter,
	channel string,
	dispatch Dispatcher,
	m *metrics.Metrics,
) error {
	reader := bufio.NewReader(rw)

	for {
		command, err := readCommand(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		logger.Debugf(ctx, "%s> %q", channel, command)

		reply, err := dispatch(ctx, command)
		if err != nil {
			return fmt.Errorf("handle command %q: %w", command, err)
		}

		m.CommandHandled(channel, commandName(command))

		if err := writeReply(rw, reply); err != nil {
			return err
		}

		logger.Debugf(ctx, "%s< %q", channel, reply)
	}
}

// readCommand reads one delimited command and strips the delimiter.
// It returns io.EOF when the peer closed between commands.
func readCommand(reader *bufio.Reader) (string, error) {
	frame, err := reader.ReadString(delimiter)
	if err != nil {
		if errors.Is(err, io.EOF) && frame != "" {
			return "", fmt.Errorf("%w: %q", ErrUnterminatedCommand, frame)
		}

		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}

		return "", fmt.Errorf("read command: %w", err)
	}

	return strings.TrimSuffix(frame, string(delimiter)), nil
}

func writeReply(w io.Writer, reply string) error {
	if _, err := io.WriteString(w, reply+string(delimiter)); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	return nil
}

// commandName strips an argument list for use as a metric label.
func commandName(command string) string {
	name, _, _ := strings.Cut(command, "(")

	return name
}
