package app

import (
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// session is the per-connection state owned by one Serve call.
// It is confined to the serving goroutine and needs no locking.
type session struct {
	id        uint64
	remote    string
	state     domain.SessionState
	exchanges uint64
	opened    time.Time
	logger    ports.Logger
}

func newSession(id uint64, remote string, logger ports.Logger) *session {
	return &session{
		id:     id,
		remote: remote,
		state:  domain.SessionAwaitingConnection,
		opened: time.Now(),
		logger: logger,
	}
}

// transitionTo moves the session to next or reports an invalid transition.
func (s *session) transitionTo(next domain.SessionState) error {
	if err := s.state.ValidateTransition(next); err != nil {
		return err
	}
	if s.state != next {
		s.logger.Debug("session transition",
			ports.SessionID(s.id),
			ports.String("from", s.state.String()),
			ports.String("to", next.String()),
		)
	}
	s.state = next
	return nil
}

// exchanged records one completed receive/send pair and re-enters Open.
func (s *session) exchanged() error {
	if err := s.transitionTo(domain.SessionOpen); err != nil {
		return err
	}
	s.exchanges++
	return nil
}
