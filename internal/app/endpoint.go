package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// DefaultProcessingDelay is the simulated work done before each reply.
const DefaultProcessingDelay = time.Second

// SessionEndpoint runs the lock-step request/acknowledge protocol on
// accepted connections. Sessions share nothing but the processing delay,
// which may be changed while sessions run.
type SessionEndpoint struct {
	delay   atomic.Int64
	nextID  atomic.Uint64
	active  atomic.Int64
	logger  ports.Logger
	emitter SessionEmitter
}

// NewSessionEndpoint creates an endpoint. A nil emitter is allowed.
func NewSessionEndpoint(delay time.Duration, logger ports.Logger, emitter SessionEmitter) *SessionEndpoint {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	e := &SessionEndpoint{
		logger:  logger,
		emitter: emitter,
	}
	e.SetDelay(delay)
	return e
}

// SetDelay changes the processing delay for subsequent replies.
// Negative values are treated as zero.
func (e *SessionEndpoint) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.delay.Store(int64(d))
}

// Delay returns the current processing delay.
func (e *SessionEndpoint) Delay() time.Duration {
	return time.Duration(e.delay.Load())
}

// ActiveSessions returns the number of sessions currently being served.
func (e *SessionEndpoint) ActiveSessions() int64 {
	return e.active.Load()
}

// Serve runs one session on conn until the peer disconnects or ctx is
// cancelled, then closes conn. Both are normal terminations and return nil.
// Errors are returned only for protocol violations and unexpected write
// failures. Serve never resumes a session.
func (e *SessionEndpoint) Serve(ctx context.Context, conn ports.DuplexConn) (err error) {
	s := newSession(e.nextID.Add(1), conn.RemoteAddr(), e.logger)
	if err := s.transitionTo(domain.SessionOpen); err != nil {
		conn.Close()
		return err
	}

	e.active.Add(1)
	e.emitter.OnSessionOpened(s.id, s.remote)
	e.logger.Info("session opened",
		ports.SessionID(s.id),
		ports.String("remote", s.remote),
	)

	reason := domain.ClosePeer
	defer func() {
		e.release(s, conn, reason)
	}()

	for {
		text, readErr := conn.ReadText(ctx)
		if readErr != nil {
			reason, err = classify(ctx, readErr)
			return err
		}

		if !e.wait(ctx) {
			reason = domain.CloseShutdown
			return nil
		}

		reply := domain.Acknowledge(domain.ParseClientMessage(text))
		if writeErr := conn.WriteText(ctx, domain.FormatMessage(reply)); writeErr != nil {
			reason, err = classify(ctx, writeErr)
			return err
		}

		if err := s.exchanged(); err != nil {
			reason = domain.CloseProtocol
			return err
		}
		e.emitter.OnExchange(s.id, s.exchanges)
	}
}

// wait sleeps for the processing delay. It returns false if ctx ended first.
func (e *SessionEndpoint) wait(ctx context.Context) bool {
	d := e.Delay()
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// release walks the session through Closing to Closed and frees the
// connection exactly once.
func (e *SessionEndpoint) release(s *session, conn ports.DuplexConn, reason domain.CloseReason) {
	if err := s.transitionTo(domain.SessionClosing); err != nil {
		e.logger.Error("session release", ports.SessionID(s.id), ports.Err(err))
	}
	if err := conn.Close(); err != nil {
		e.logger.Debug("session close", ports.SessionID(s.id), ports.Err(err))
	}
	if err := s.transitionTo(domain.SessionClosed); err != nil {
		e.logger.Error("session release", ports.SessionID(s.id), ports.Err(err))
	}

	elapsed := time.Since(s.opened)
	e.active.Add(-1)
	e.emitter.OnSessionClosed(s.id, s.exchanges, reason, elapsed)
	e.logger.Info("session closed",
		ports.SessionID(s.id),
		ports.String("remote", s.remote),
		ports.Uint64("exchanges", s.exchanges),
		ports.String("reason", string(reason)),
		ports.Duration("elapsed", elapsed),
	)
}

// classify maps a transport error to a close reason and the error Serve
// should return.
func classify(ctx context.Context, err error) (domain.CloseReason, error) {
	switch {
	case ctx.Err() != nil:
		return domain.CloseShutdown, nil
	case errors.Is(err, domain.ErrConnClosed):
		return domain.ClosePeer, nil
	case errors.Is(err, domain.ErrUnsupportedFrame):
		return domain.CloseProtocol, err
	default:
		return domain.CloseTransport, fmt.Errorf("session transport: %w", err)
	}
}
