package lockstep

import (
	"time"

	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
)

// State is the lifecycle state of a Server.
type State = app.State

// Lifecycle states.
const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateServing  = app.StateServing
	StateDraining = app.StateDraining
	StateFailed   = app.StateFailed
)

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SessionEvent describes a streaming session that just opened.
type SessionEvent struct {
	ID     uint64
	Remote string
}

// SessionClosedEvent describes a finished streaming session.
type SessionClosedEvent struct {
	ID        uint64
	Exchanges uint64
	Reason    string
	Duration  time.Duration
}

// TransferEvent describes one transfer attempt. Err is nil on success.
type TransferEvent struct {
	FileName string
	Path     string
	Size     int64
	Err      error
}

// EventHandler receives server notifications. Calls are synchronous from
// session and request goroutines and must return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnSessionOpened(SessionEvent)
	OnSessionClosed(SessionClosedEvent)
	OnTransfer(TransferEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// handle only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)     {}
func (BaseEventHandler) OnSessionOpened(SessionEvent)       {}
func (BaseEventHandler) OnSessionClosed(SessionClosedEvent) {}
func (BaseEventHandler) OnTransfer(TransferEvent)           {}

// handlerEmitter adapts EventHandler to the internal emitter interfaces.
type handlerEmitter struct {
	handler EventHandler
}

func (e handlerEmitter) OnStateChange(previous, current app.State, reason string) {
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

func (e handlerEmitter) OnSessionOpened(id uint64, remote string) {
	e.handler.OnSessionOpened(SessionEvent{ID: id, Remote: remote})
}

func (e handlerEmitter) OnExchange(id, exchanges uint64) {}

func (e handlerEmitter) OnSessionClosed(id, exchanges uint64, reason domain.CloseReason, elapsed time.Duration) {
	e.handler.OnSessionClosed(SessionClosedEvent{
		ID:        id,
		Exchanges: exchanges,
		Reason:    string(reason),
		Duration:  elapsed,
	})
}

func (e handlerEmitter) OnTransferStored(result domain.TransferResult, elapsed time.Duration) {
	e.handler.OnTransfer(TransferEvent{FileName: result.FileName, Path: result.Path, Size: result.Size})
}

func (e handlerEmitter) OnTransferFailed(fileName string, err error) {
	e.handler.OnTransfer(TransferEvent{FileName: fileName, Err: err})
}

// emitter is the full set of internal notification interfaces.
type emitter interface {
	app.SessionEmitter
	app.TransferEmitter
	app.StateEmitter
}

// fanout forwards every notification to each emitter in order.
type fanout []emitter

func (f fanout) OnStateChange(previous, current app.State, reason string) {
	for _, e := range f {
		e.OnStateChange(previous, current, reason)
	}
}

func (f fanout) OnSessionOpened(id uint64, remote string) {
	for _, e := range f {
		e.OnSessionOpened(id, remote)
	}
}

func (f fanout) OnExchange(id, exchanges uint64) {
	for _, e := range f {
		e.OnExchange(id, exchanges)
	}
}

func (f fanout) OnSessionClosed(id, exchanges uint64, reason domain.CloseReason, elapsed time.Duration) {
	for _, e := range f {
		e.OnSessionClosed(id, exchanges, reason, elapsed)
	}
}

func (f fanout) OnTransferStored(result domain.TransferResult, elapsed time.Duration) {
	for _, e := range f {
		e.OnTransferStored(result, elapsed)
	}
}

func (f fanout) OnTransferFailed(fileName string, err error) {
	for _, e := range f {
		e.OnTransferFailed(fileName, err)
	}
}
