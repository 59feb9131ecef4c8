package overlordcli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/micromax/isara-emulator/internal/api/overlord"
	"github.com/micromax/isara-emulator/internal/logger"
)

const (
	// DefaultAddress is the overlord port of a locally running emulator.
	DefaultAddress = "localhost:1111"
	// prompt is shown before each interactive line.
	prompt = "overlord> "
)

// Options controls the client.
type Options struct {
	// Address of the overlord endpoint.
	Address string
}

// Run connects to the overlord endpoint and relays between the terminal and
// the emulator until input ends, the emulator disconnects or ctx is done.
func Run(ctx context.Context, opts *Options) error {
	address := opts.Address
	if address == "" {
		address = DefaultAddress
	}

	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", address, err)
	}

	logger.InfoKV(ctx, "Connected to overlord", "address", address)

	lines := NewLineEditor()
	defer func() { _ = lines.Close() }()

	return run(ctx, conn, lines, os.Stdout)
}

// run relays user commands to conn and prints what the emulator sends to out.
func run(ctx context.Context, conn net.Conn, lines LineReader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	w := &syncWriter{w: out}

	serverDone := make(chan error, 1)

	go func() { serverDone <- printMessages(conn, w) }()

	userLines := make(chan string)
	userDone := make(chan error, 1)

	go func() {
		for {
			line, err := lines.ReadLine(prompt)
			if err != nil {
				userDone <- err

				return
			}

			select {
			case userLines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			<-serverDone

			return nil
		case err := <-serverDone:
			if err == nil {
				_, _ = fmt.Fprintln(w, "connection closed by overlord")
			}

			return err
		case err := <-userDone:
			_ = conn.Close()
			<-serverDone

			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("read input: %w", err)
		case line := <-userLines:
			req, ok := parseUserCommand(line)
			if !ok {
				_, _ = fmt.Fprintln(w, "give me a command!")

				continue
			}

			if err := sendRequest(conn, req); err != nil {
				return err
			}
		}
	}
}

// parseUserCommand splits a typed line into lowercase command and arguments.
func parseUserCommand(line string) (overlord.Request, bool) {
	parts := strings.Fields(strings.ToLower(line))
	if len(parts) == 0 {
		return overlord.Request{}, false
	}

	return overlord.Request{Command: parts[0], Args: parts[1:]}, true
}

func sendRequest(conn net.Conn, req overlord.Request) error {
	data, err := overlord.EncodeRequest(req)
	if err != nil {
		return err
	}

	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("send command: %w", err)
	}

	return nil
}

// printMessages prints server messages until the connection ends.
// A closed connection is a normal end.
func printMessages(conn net.Conn, w io.Writer) error {
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}

			return fmt.Errorf("read message: %w", err)
		}

		printMessage(w, line)
	}
}

// printMessage renders attributes one per line sorted by name, and errors
// with an "error:" prefix.
func printMessage(w io.Writer, data []byte) {
	msg, err := overlord.DecodeMessage(data)

	switch {
	case err != nil:
		_, _ = fmt.Fprintf(w, "unexpected message from overlord: %s\n", strings.TrimSpace(string(data)))
	case msg.Attributes != nil:
		for _, name := range slices.Sorted(maps.Keys(msg.Attributes)) {
			_, _ = fmt.Fprintf(w, "%s: %v\n", name, msg.Attributes[name])
		}
	default:
		_, _ = fmt.Fprintf(w, "error: %s\n", msg.Error)
	}
}

// syncWriter lets the printer and the input loop share one output.
type syncWriter struct {
	w  io.Writer
	mu sync.Mutex
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Write(p)
}
