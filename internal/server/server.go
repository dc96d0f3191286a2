// Package server owns the HTTP route table: the streaming endpoint, the
// file transfer endpoint and the auxiliary routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/observability"
	"github.com/bft-labs/lockstep/internal/ports"
)

// Route paths.
const (
	RootPath     = "/"
	PostDataPath = "/post-data/"
	UploadPath   = "/upload-file/"
	StreamPath   = "/ws"
	MetricsPath  = "/metrics"
)

// FileField is the multipart field carrying the uploaded file.
const FileField = "file"

// Default limits.
const (
	DefaultMaxUploadMemory = 32 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds HTTP surface settings.
type Config struct {
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string

	// MaxUploadMemory is the multipart memory limit before spilling to disk.
	MaxUploadMemory int64

	// ShutdownTimeout bounds graceful shutdown in Serve.
	ShutdownTimeout time.Duration
}

// Deps are the collaborators the routes dispatch to.
type Deps struct {
	Endpoint  *app.SessionEndpoint
	Transfers *app.TransferService
	Logger    ports.Logger

	// Metrics enables request metrics when set.
	Metrics *observability.Metrics

	// Gatherer enables the /metrics route when set.
	Gatherer prometheus.Gatherer
}

// Server serves one route table. WebSocket sessions outlive their HTTP
// handlers' bookkeeping in net/http, so Server tracks them itself.
type Server struct {
	cfg    Config
	deps   Deps
	router *gin.Engine

	sessionCtx    context.Context
	closeSessions context.CancelFunc

	// mu orders sessions.Add against drain: once closing is set no new
	// session is counted.
	mu       sync.Mutex
	closing  bool
	sessions sync.WaitGroup
}

// New builds the router and registers every route.
func New(cfg Config, deps Deps) *Server {
	if cfg.MaxUploadMemory <= 0 {
		cfg.MaxUploadMemory = DefaultMaxUploadMemory
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadMemory
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(observability.RequestMetrics(deps.Metrics))
	}
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:           cfg,
		deps:          deps,
		router:        r,
		sessionCtx:    ctx,
		closeSessions: cancel,
	}
	s.registerRoutes()
	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET(RootPath, s.handleRoot)
	s.router.POST(PostDataPath, s.handlePostData)
	s.router.POST(UploadPath, s.handleUpload)
	s.router.GET(StreamPath, s.handleStream)
	if s.deps.Gatherer != nil {
		s.router.GET(MetricsPath, gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down:
// listeners close, open sessions are closed, and in-flight requests get
// ShutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.stopSessions()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.stopSessions()
	err := srv.Shutdown(shutdownCtx)
	<-errCh
	if drainErr := s.drain(shutdownCtx); drainErr != nil && err == nil {
		err = drainErr
	}
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// trackSession counts a new session unless shutdown has begun.
func (s *Server) trackSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions.Add(1)
	return true
}

// stopSessions refuses new sessions and cancels the open ones.
func (s *Server) stopSessions() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.closeSessions()
}

// drain waits for open sessions to finish.
func (s *Server) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return domain.ErrShutdownTimeout
	}
}
