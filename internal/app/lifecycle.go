package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// ShutdownTimeout is the default time allowed for draining on Stop.
const ShutdownTimeout = 10 * time.Second

// State represents the lifecycle state of a server instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateServing
	StateDraining
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateServing:
		return "Serving"
	case StateDraining:
		return "Draining"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// allowedTransitions lists, per state, the states it may move to.
var allowedTransitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateServing, StateDraining, StateFailed},
	StateServing:  {StateDraining, StateFailed},
	StateDraining: {StateStopped, StateFailed},
	StateFailed:   {StateStarting},
}

// StateEmitter is called when the lifecycle state changes.
type StateEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle manages the state machine and worker accounting of a server.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  ports.Logger
	emitter StateEmitter
}

// NewLifecycle creates a lifecycle in StateStopped. A nil emitter is allowed.
func NewLifecycle(logger ports.Logger, emitter StateEmitter) *Lifecycle {
	return &Lifecycle{
		state:   StateStopped,
		logger:  logger,
		emitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to newState or returns an error if the move is not
// allowed. Leaving Stopped or Failed only happens through Starting.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if !transitionAllowed(oldState, newState) {
		l.mu.Unlock()
		if oldState == StateStopped || oldState == StateFailed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = newState
	l.mu.Unlock()

	// Emit outside of the lock.
	if l.emitter != nil {
		l.emitter.OnStateChange(oldState, newState, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
	return nil
}

func transitionAllowed(from, to State) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateFailed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateServing || l.state == StateStarting
}

// SetCancel stores the function that cancels the serving context.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel cancels the serving context, if any.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Go runs fn as a tracked worker.
func (l *Lifecycle) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

// WaitWithTimeout waits for all workers, or returns domain.ErrShutdownTimeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, abandoning workers",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
