package ws

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/lockstep/internal/ports"
)

// Dialer implements ports.SessionDialer.
type Dialer struct {
	dialer *websocket.Dialer
}

// NewDialer creates a dialer with the given handshake timeout.
// A zero timeout keeps the gorilla default.
func NewDialer(handshakeTimeout time.Duration) *Dialer {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	return &Dialer{dialer: &d}
}

// Dial opens a WebSocket session to url.
func (d *Dialer) Dial(ctx context.Context, url string) (ports.DuplexConn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewConn(conn), nil
}
