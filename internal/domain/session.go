package domain

import "fmt"

// SessionState is the lifecycle state of one streaming session.
type SessionState int

const (
	SessionAwaitingConnection SessionState = iota
	SessionOpen
	SessionClosing
	SessionClosed
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionAwaitingConnection:
		return "AwaitingConnection"
	case SessionOpen:
		return "Open"
	case SessionClosing:
		return "Closing"
	case SessionClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether a session may move from s to next.
// Open re-enters itself once per exchange; Closed is terminal.
func (s SessionState) CanTransition(next SessionState) bool {
	switch s {
	case SessionAwaitingConnection:
		return next == SessionOpen || next == SessionClosed
	case SessionOpen:
		return next == SessionOpen || next == SessionClosing
	case SessionClosing:
		return next == SessionClosed
	default:
		return false
	}
}

// ValidateTransition returns ErrInvalidTransition when s cannot move to next.
func (s SessionState) ValidateTransition(next SessionState) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// CloseReason records why a session left the Open state.
type CloseReason string

const (
	ClosePeer      CloseReason = "peer_closed"
	CloseShutdown  CloseReason = "shutdown"
	CloseProtocol  CloseReason = "protocol_error"
	CloseTransport CloseReason = "transport_error"
)
