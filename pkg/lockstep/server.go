package lockstep

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/lockstep/internal/adapters/fs"
	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ingest"
	"github.com/bft-labs/lockstep/internal/observability"
	"github.com/bft-labs/lockstep/internal/ports"
	"github.com/bft-labs/lockstep/internal/server"
)

// Server is an embeddable streaming and file transfer server.
// Use New() to create an instance, then Start() to begin serving.
type Server struct {
	config    Config
	lifecycle *app.Lifecycle
	endpoint  *app.SessionEndpoint
	transfers *app.TransferService
	metrics   *observability.Metrics
	registry  *prometheus.Registry
	logger    ports.Logger

	mu         sync.RWMutex
	addr       net.Addr
	ingestAddr net.Addr
}

// New creates a Server in StateStopped. Zero config fields take defaults.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	metrics := observability.NewMetrics(o.registry)
	emitters := fanout{metrics}
	if o.eventHandler != nil {
		emitters = append(emitters, handlerEmitter{handler: o.eventHandler})
	}

	return &Server{
		config:    cfg,
		lifecycle: app.NewLifecycle(o.logger, emitters),
		endpoint:  app.NewSessionEndpoint(cfg.ProcessingDelay, o.logger, emitters),
		transfers: app.NewTransferService(fs.NewDiskStore(cfg.UploadDir), o.logger, emitters),
		metrics:   metrics,
		registry:  o.registry,
		logger:    o.logger,
	}, nil
}

// Start opens the listeners and serves in the background. It returns
// once the listeners are bound. Cancelling ctx has the same effect on
// sessions as Stop, but Stop must still be called to release the server.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateFailed, err.Error())
		return err
	}
	var ingestLn net.Listener
	if s.config.IngestAddr != "" {
		ingestLn, err = net.Listen("tcp", s.config.IngestAddr)
		if err != nil {
			ln.Close()
			_ = s.lifecycle.TransitionTo(app.StateFailed, err.Error())
			return err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	httpServer := server.New(server.Config{
		CORSOrigins:     s.config.CORSOrigins,
		MaxUploadMemory: s.config.MaxUploadMemory,
		ShutdownTimeout: s.config.ShutdownTimeout,
	}, server.Deps{
		Endpoint:  s.endpoint,
		Transfers: s.transfers,
		Logger:    s.logger,
		Metrics:   s.metrics,
		Gatherer:  s.registry,
	})

	s.addr = ln.Addr()
	s.lifecycle.Go(func() {
		if err := httpServer.Serve(runCtx, ln); err != nil {
			s.fail("http server", err)
		}
	})

	if ingestLn != nil {
		s.ingestAddr = ingestLn.Addr()
		listener := ingest.New(ingest.Config{Workers: s.config.IngestWorkers, ReadTimeout: ingest.DefaultReadTimeout},
			s.transfers, s.logger, s.metrics)
		s.lifecycle.Go(func() {
			if err := listener.Serve(runCtx, ingestLn); err != nil {
				s.fail("ingest", err)
			}
		})
	}

	s.logger.Info("lockstep serving",
		ports.String("addr", s.addr.String()),
		ports.Duration("processing_delay", s.endpoint.Delay()),
		ports.String("upload_dir", s.config.UploadDir),
	)
	return s.lifecycle.TransitionTo(app.StateServing, "listening")
}

// fail records a component failure and stops the remaining components.
func (s *Server) fail(component string, err error) {
	s.logger.Error("server component failed", ports.String("component", component), ports.Err(err))
	if st := s.lifecycle.State(); st == app.StateServing || st == app.StateStarting {
		_ = s.lifecycle.TransitionTo(app.StateFailed, component+": "+err.Error())
	}
	s.lifecycle.Cancel()
}

// Stop closes the listeners and open sessions and waits for in-flight work
// up to Config.ShutdownTimeout. Returns domain.ErrShutdownTimeout if work
// was abandoned.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateDraining, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lifecycle.Cancel()
	s.mu.Unlock()

	// Allow the HTTP shutdown its own timeout before giving up.
	err := s.lifecycle.WaitWithTimeout(s.config.ShutdownTimeout + time.Second)

	s.mu.Lock()
	s.addr, s.ingestAddr = nil, nil
	s.mu.Unlock()

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateFailed, "shutdown timeout")
		return err
	}
	return s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Server) Status() State {
	return s.lifecycle.State()
}

// Addr returns the bound HTTP address, or "" when not serving.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// IngestAddr returns the bound raw ingest address, or "" when disabled.
func (s *Server) IngestAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ingestAddr == nil {
		return ""
	}
	return s.ingestAddr.String()
}

// SetProcessingDelay changes the delay applied before each reply,
// including in sessions already open. Negative values mean zero.
func (s *Server) SetProcessingDelay(d time.Duration) {
	s.endpoint.SetDelay(d)
	s.logger.Info("processing delay updated", ports.Duration("delay", s.endpoint.Delay()))
}

// ProcessingDelay returns the current processing delay.
func (s *Server) ProcessingDelay() time.Duration {
	return s.endpoint.Delay()
}

// ActiveSessions returns the number of open streaming sessions.
func (s *Server) ActiveSessions() int64 {
	return s.endpoint.ActiveSessions()
}
