package overlord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/micromax/isara-emulator/internal/logger"
	"github.com/micromax/isara-emulator/internal/metrics"
)

// ChannelOverlord is the channel name used in logs and metrics.
const ChannelOverlord = "overlord"

// Device is what an overlord session needs from the emulated device.
type Device interface {
	// AttributeNames lists the attributes streamed to clients.
	AttributeNames() []string
	// Attribute returns the current value of an attribute.
	Attribute(name string) (any, bool)
	// Watch registers fn for changes of an attribute. fn must not block.
	Watch(name string, fn func(value any)) (cancel func())
	// Execute runs an administrative command.
	Execute(ctx context.Context, command string, args []string) error
}

// Conn is a message oriented client connection.
type Conn interface {
	// ReadMessage returns the next client message, io.EOF once the peer closed.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one message. It is never called concurrently.
	WriteMessage(data []byte) error
	// Close closes the connection, unblocking a pending ReadMessage.
	Close() error
}

// session is the state of one connected overlord client.
type session struct {
	// device is the emulated device.
	device Device
	// conn is the client connection.
	conn Conn
	// updates buffers attribute changes for the sender goroutine.
	updates *queue
	// metrics records delivered updates.
	metrics *metrics.Metrics
	// writeMu serializes writes from the sender and the receiver.
	writeMu sync.Mutex
}

// Serve runs an overlord session on conn until the client disconnects.
// The connection is closed when Serve returns.
func Serve(ctx context.Context, device Device, conn Conn, m *metrics.Metrics) error {
	ctx = logger.WithKV(ctx, "session", uuid.NewString())

	s := &session{
		device:  device,
		conn:    conn,
		updates: newQueue(),
		metrics: m,
	}

	m.ConnectionOpened(ChannelOverlord)
	defer m.ConnectionClosed(ChannelOverlord)

	logger.InfoKV(ctx, "New overlord connection")

	stopClose := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stopClose()

	names := device.AttributeNames()

	// Watch before taking the snapshot so no change falls in between.
	cancels := make([]func(), 0, len(names))
	for _, name := range names {
		cancels = append(cancels, device.Watch(name, func(value any) {
			s.updates.Push(update{name: name, value: value})
		}))
	}

	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	if err := s.sendSnapshot(names); err != nil {
		_ = conn.Close()

		return err
	}

	var wg sync.WaitGroup

	wg.Go(func() { s.pushUpdates(ctx) })

	err := s.readCommands(ctx)

	s.updates.Close()
	_ = conn.Close()
	wg.Wait()

	if err != nil && ctx.Err() == nil {
		logger.ErrorKV(ctx, "Overlord connection failed", "error", err)

		return err
	}

	logger.InfoKV(ctx, "Closing overlord connection")

	return nil
}

func (s *session) sendSnapshot(names []string) error {
	attributes := make(map[string]any, len(names))

	for _, name := range names {
		value, _ := s.device.Attribute(name)
		attributes[name] = value
	}

	return s.sendAttributes(attributes)
}

// pushUpdates delivers queued changes, one message per attribute, until the
// queue is closed or a write fails.
func (s *session) pushUpdates(ctx context.Context) {
	for {
		u, ok := s.updates.Pop(ctx)
		if !ok {
			return
		}

		if err := s.sendAttributes(map[string]any{u.name: u.value}); err != nil {
			logger.DebugKV(ctx, "Stopped pushing attribute updates", "error", err)

			return
		}

		s.metrics.AttributeUpdate(u.name)
	}
}

// readCommands handles client requests until the peer closes the connection.
func (s *session) readCommands(ctx context.Context) error {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("read request: %w", err)
		}

		if err := s.handleRequest(ctx, data); err != nil {
			return err
		}
	}
}

// handleRequest executes one request. Request errors are reported to the
// client; only a failure to write the report is returned.
func (s *session) handleRequest(ctx context.Context, data []byte) error {
	req, err := DecodeRequest(data)
	if err != nil {
		s.metrics.ProtocolError(ChannelOverlord)

		return s.sendError(fmt.Sprintf("error parsing command: %v", err))
	}

	logger.DebugKV(ctx, "Overlord command", "command", req.Command, "args", req.Args)

	if err := s.device.Execute(ctx, req.Command, req.Args); err != nil {
		s.metrics.ProtocolError(ChannelOverlord)

		return s.sendError(err.Error())
	}

	s.metrics.CommandHandled(ChannelOverlord, req.Command)

	return nil
}

func (s *session) sendAttributes(attributes map[string]any) error {
	data, err := EncodeAttributes(attributes)
	if err != nil {
		return err
	}

	return s.send(data)
}

func (s *session) sendError(text string) error {
	data, err := EncodeError(text)
	if err != nil {
		return err
	}

	return s.send(data)
}

func (s *session) send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteMessage(data); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	return nil
}
