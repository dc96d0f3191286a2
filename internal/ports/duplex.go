package ports

import "context"

// DuplexConn is one full-duplex text connection.
//
// ReadText blocks until the next text message arrives. It returns an error
// wrapping domain.ErrConnClosed when the peer closed the connection or the
// transport dropped, and domain.ErrUnsupportedFrame for non-text messages.
// Implementations allow one concurrent reader and one concurrent writer.
type DuplexConn interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error

	// Close performs a normal closure and releases the connection.
	// It is safe to call more than once.
	Close() error

	// RemoteAddr identifies the peer for logging.
	RemoteAddr() string
}

// SessionDialer opens streaming sessions.
type SessionDialer interface {
	Dial(ctx context.Context, url string) (DuplexConn, error)
}
