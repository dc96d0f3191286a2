// Package ws adapts gorilla/websocket connections to ports.DuplexConn.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/lockstep/internal/domain"
)

// closeGrace bounds how long a close frame may take to write.
const closeGrace = time.Second

// Conn implements ports.DuplexConn over a WebSocket connection.
type Conn struct {
	ws *websocket.Conn

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established WebSocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadText blocks for the next text message.
// Peer closure and transport failures wrap domain.ErrConnClosed. A binary
// message is answered with an "unsupported data" close frame and reported as
// domain.ErrUnsupportedFrame.
func (c *Conn) ReadText(ctx context.Context) (string, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = c.ws.SetReadDeadline(time.Now())
	})
	defer stop()

	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", domain.ErrConnClosed, err)
	}
	if kind != websocket.TextMessage {
		c.closeWith(websocket.CloseUnsupportedData, "text messages only")
		return "", domain.ErrUnsupportedFrame
	}
	return string(data), nil
}

// WriteText sends one text message.
func (c *Conn) WriteText(ctx context.Context, text string) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.ws.SetWriteDeadline(time.Now())
	})
	defer stop()

	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", domain.ErrConnClosed, err)
	}
	return nil
}

// Close sends a normal closure frame and closes the connection.
func (c *Conn) Close() error {
	c.closeWith(websocket.CloseNormalClosure, "")
	return c.closeErr
}

// CloseGoingAway closes the connection with a "going away" frame, used when
// the server refuses a session because it is shutting down.
func (c *Conn) CloseGoingAway(reason string) error {
	c.closeWith(websocket.CloseGoingAway, reason)
	return c.closeErr
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

func (c *Conn) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		// The peer may already be gone; the close frame is best effort.
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.closeErr = c.ws.Close()
	})
}

// upgrader accepts every origin: sessions carry no credentials.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Accept upgrades an HTTP request to a WebSocket connection.
// On failure the upgrader has already replied to the client.
func Accept(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	return NewConn(ws), nil
}
