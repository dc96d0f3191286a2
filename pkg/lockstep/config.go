package lockstep

import (
	"fmt"
	"time"

	"github.com/bft-labs/lockstep/internal/adapters/fs"
	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ingest"
	"github.com/bft-labs/lockstep/internal/server"
)

// Config configures a Server.
type Config struct {
	// ListenAddr is the HTTP listen address. Default: 0.0.0.0:8000
	ListenAddr string

	// UploadDir receives transferred files. Default: uploads
	UploadDir string

	// ProcessingDelay is applied before every reply. Default: 1s
	// Use Server.SetProcessingDelay(0) to reply immediately.
	ProcessingDelay time.Duration

	// IngestAddr enables the raw TCP ingest listener when non-empty.
	IngestAddr string

	// IngestWorkers bounds concurrent raw uploads. Default: 10
	IngestWorkers int

	// CORSOrigins lists allowed browser origins. Empty allows any.
	CORSOrigins []string

	// MaxUploadMemory is the multipart memory limit. Default: 32MB
	MaxUploadMemory int64

	// ShutdownTimeout bounds Stop. Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultProcessingDelay is the standard simulated work per message.
const DefaultProcessingDelay = app.DefaultProcessingDelay

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.ProcessingDelay == 0 {
		c.ProcessingDelay = DefaultProcessingDelay
	}
	if c.ListenAddr == "" {
		c.ListenAddr = "0.0.0.0:8000"
	}
	if c.UploadDir == "" {
		c.UploadDir = fs.DefaultUploadDir
	}
	if c.IngestWorkers <= 0 {
		c.IngestWorkers = ingest.DefaultWorkers
	}
	if c.MaxUploadMemory <= 0 {
		c.MaxUploadMemory = server.DefaultMaxUploadMemory
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = server.DefaultShutdownTimeout
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.ProcessingDelay < 0 {
		return fmt.Errorf("%w: processing delay must not be negative", domain.ErrInvalidConfig)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("%w: upload dir is required", domain.ErrInvalidConfig)
	}
	return nil
}
