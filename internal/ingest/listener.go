// Package ingest accepts raw TCP uploads: each connection carries one file,
// read until EOF and stored under a generated name.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// Defaults.
const (
	DefaultWorkers     = 10
	DefaultReadTimeout = 30 * time.Second
)

// Outcomes passed to Recorder.
const (
	OutcomeStored  = "stored"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Recorder counts handled connections by outcome.
type Recorder interface {
	RecordIngest(outcome string)
}

// Config controls the listener.
type Config struct {
	// Workers is the number of concurrent uploads.
	Workers int

	// QueueSize bounds accepted connections waiting for a worker.
	// A full queue blocks the accept loop.
	QueueSize int

	// ReadTimeout bounds one upload. Zero disables it.
	ReadTimeout time.Duration
}

// Listener stores each accepted connection's bytes as upload_<n>.dat.
type Listener struct {
	cfg       Config
	transfers *app.TransferService
	logger    ports.Logger
	recorder  Recorder
	seq       atomic.Uint64
}

// New creates a listener. A nil recorder is allowed.
func New(cfg Config, transfers *app.TransferService, logger ports.Logger, recorder Recorder) *Listener {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers
	}
	return &Listener{
		cfg:       cfg,
		transfers: transfers,
		logger:    logger,
		recorder:  recorder,
	}
}

// FileName returns the stored name for the n-th upload.
func FileName(n uint64) string {
	return fmt.Sprintf("upload_%d.dat", n)
}

// Serve accepts on ln until ctx is cancelled. It closes ln and returns
// after queued and in-flight uploads have finished.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	pool := newWorkers(l.cfg.QueueSize)
	pool.Start(l.cfg.Workers)
	defer pool.Stop()

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	l.logger.Info("ingest listening",
		ports.String("addr", ln.Addr().String()),
		ports.Int("workers", l.cfg.Workers),
	)

	bo := newBackoff(backoffInitial, backoffMax)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				l.logger.Warn("ingest accept", ports.Err(err), ports.Duration("retry_in", bo.Current()))
				if !bo.Sleep(ctx) {
					return nil
				}
				continue
			}
			_ = ln.Close()
			return fmt.Errorf("ingest accept: %w", err)
		}
		bo.Reset()

		if err := pool.Enqueue(ctx, func() { l.handle(ctx, conn) }); err != nil {
			_ = conn.Close()
			l.record(OutcomeDropped)
			return nil
		}
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if ctx.Err() != nil {
		l.record(OutcomeDropped)
		return
	}
	if l.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(l.cfg.ReadTimeout))
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	name := FileName(l.seq.Add(1))
	result, err := l.transfers.Store(ctx, domain.TransferRequest{
		FileName: name,
		Content:  conn,
	})
	if err != nil {
		l.logger.Error("ingest upload failed",
			ports.String("remote", conn.RemoteAddr().String()),
			ports.String("file", name),
			ports.Err(err),
		)
		l.record(OutcomeFailed)
		return
	}

	l.logger.Info("ingest upload stored",
		ports.String("remote", conn.RemoteAddr().String()),
		ports.String("path", result.Path),
		ports.Int64("bytes", result.Size),
	)
	l.record(OutcomeStored)
}

func (l *Listener) record(outcome string) {
	if l.recorder != nil {
		l.recorder.RecordIngest(outcome)
	}
}
