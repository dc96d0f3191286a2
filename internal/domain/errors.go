package domain

import "errors"

// Domain errors represent error conditions in the lockstep domain.
// They are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running server.
	ErrAlreadyRunning = errors.New("lockstep: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped server.
	ErrNotRunning = errors.New("lockstep: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("lockstep: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("lockstep: invalid configuration")

	// ErrInvalidTransition is returned for a session state change the
	// session state machine does not allow.
	ErrInvalidTransition = errors.New("lockstep: invalid session transition")

	// ErrConnClosed reports that the peer closed the duplex connection or
	// the connection dropped. It is a normal session termination.
	ErrConnClosed = errors.New("lockstep: connection closed")

	// ErrUnsupportedFrame is returned when a peer sends a non-text message.
	ErrUnsupportedFrame = errors.New("lockstep: unsupported frame type")

	// ErrMalformedMessage is returned when a server reply lacks the
	// processed prefix.
	ErrMalformedMessage = errors.New("lockstep: malformed message")

	// ErrInvalidFileName is returned when a transfer names a file that
	// cannot be stored verbatim inside the upload directory.
	ErrInvalidFileName = errors.New("lockstep: invalid file name")

	// ErrMissingFile is returned when a transfer carries no file part.
	ErrMissingFile = errors.New("lockstep: missing file")
)
