package lockstep

import (
	"context"
	"net/http"
	"time"

	httpAdapter "github.com/bft-labs/lockstep/internal/adapters/http"
	"github.com/bft-labs/lockstep/internal/adapters/ws"
	"github.com/bft-labs/lockstep/internal/app"
	"github.com/bft-labs/lockstep/internal/cliconfig"
)

// DriverConfig configures a Driver.
type DriverConfig struct {
	// ServerURL is the server's base URL. Default: http://localhost:8000
	ServerURL string

	// Updates is the number of exchanges after Start. Default: 5
	Updates int

	// File is uploaded after the session. Empty skips the upload.
	File string

	// HandshakeTimeout bounds the WebSocket handshake. Default: 10s
	HandshakeTimeout time.Duration

	// HTTPTimeout bounds the upload request. Default: 30s
	HTTPTimeout time.Duration
}

// Report summarizes one driver run. Truncated is set when the server
// closed the session early; Responses then holds only the replies received.
type Report = app.Report

// Driver runs one streaming session and then one file upload.
type Driver struct {
	driver *app.Driver
}

// NewDriver validates cfg and creates a Driver.
func NewDriver(cfg DriverConfig, opts ...Option) (*Driver, error) {
	cc := cliconfig.DefaultDriverConfig()
	if cfg.ServerURL != "" {
		cc.ServerURL = cfg.ServerURL
	}
	if cfg.Updates > 0 {
		cc.Updates = cfg.Updates
	}
	if cfg.HandshakeTimeout > 0 {
		cc.HandshakeTimeout = cfg.HandshakeTimeout
	}
	if cfg.HTTPTimeout > 0 {
		cc.HTTPTimeout = cfg.HTTPTimeout
	}
	cc.File = cfg.File
	if err := cc.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cc.HTTPTimeout}
	}

	d := app.NewDriver(app.DriverConfig{
		StreamURL: cc.StreamURL(),
		UploadURL: cc.UploadURL(),
		Updates:   cc.Updates,
		FilePath:  cc.File,
	},
		ws.NewDialer(cc.HandshakeTimeout),
		httpAdapter.NewUploader(o.httpClient, o.logger),
		o.output,
		o.logger,
	)
	return &Driver{driver: d}, nil
}

// Run performs the session and then the upload. A session the server cut
// short is reported in Report.Truncated, not as an error.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	return d.driver.Run(ctx)
}
