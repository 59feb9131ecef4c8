package overlord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/micromax/isara-emulator/internal/logger"
	"github.com/micromax/isara-emulator/internal/metrics"
)

// WebSocketPath is the HTTP path of the overlord WebSocket endpoint.
const WebSocketPath = "/overlord"

// wsConn carries one message per WebSocket text frame.
type wsConn struct {
	conn *websocket.Conn
}

// NewWebSocketConn wraps an upgraded WebSocket connection.
func NewWebSocketConn(conn *websocket.Conn) Conn {
	return &wsConn{conn: conn}
}

// ReadMessage returns the next frame payload, io.EOF once the peer is gone.
func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err,
			websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			return nil, io.EOF
		}

		return nil, err
	}

	return data, nil
}

// WriteMessage sends data as a text frame.
func (c *wsConn) WriteMessage(data []byte) error {
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// Close closes the underlying connection without a closing handshake.
func (c *wsConn) Close() error {
	return c.conn.Close()
}

// WebSocketHandler upgrades HTTP requests and serves overlord sessions on them.
type WebSocketHandler struct {
	// ctx scopes sessions to the server lifetime rather than the request.
	ctx      context.Context //nolint:containedctx // Hijacked connections outlive request contexts.
	device   Device
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the WebSocket endpoint. Sessions end when ctx is done.
func NewWebSocketHandler(ctx context.Context, device Device, m *metrics.Metrics) *WebSocketHandler {
	return &WebSocketHandler{
		ctx:     ctx,
		device:  device,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Test harnesses connect from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the session until the client leaves.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnKV(h.ctx, "WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)

		return
	}

	ctx := logger.WithKV(h.ctx, "remote", r.RemoteAddr)
	ctx = logger.WithKV(ctx, "transport", "websocket")

	if err := Serve(ctx, h.device, NewWebSocketConn(conn), h.metrics); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.DebugKV(ctx, "WebSocket session ended", "error", err)
	}
}
