package app

import (
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
)

// SessionEmitter is notified as streaming sessions progress.
// Calls are made synchronously from the session goroutine.
type SessionEmitter interface {
	OnSessionOpened(id uint64, remote string)
	OnExchange(id uint64, exchanges uint64)
	OnSessionClosed(id uint64, exchanges uint64, reason domain.CloseReason, elapsed time.Duration)
}

// TransferEmitter is notified after each transfer attempt.
type TransferEmitter interface {
	OnTransferStored(result domain.TransferResult, elapsed time.Duration)
	OnTransferFailed(fileName string, err error)
}

// NopEmitter implements SessionEmitter and TransferEmitter by doing nothing.
type NopEmitter struct{}

func (NopEmitter) OnSessionOpened(uint64, string)                                    {}
func (NopEmitter) OnExchange(uint64, uint64)                                         {}
func (NopEmitter) OnSessionClosed(uint64, uint64, domain.CloseReason, time.Duration) {}
func (NopEmitter) OnTransferStored(domain.TransferResult, time.Duration)             {}
func (NopEmitter) OnTransferFailed(string, error)                                    {}
