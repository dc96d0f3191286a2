package lockstep

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"

	logAdapter "github.com/bft-labs/lockstep/internal/adapters/log"
	"github.com/bft-labs/lockstep/internal/ports"
)

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Option configures optional behavior of a Server or Driver.
type Option func(*options)

type options struct {
	logger       ports.Logger
	eventHandler EventHandler
	registry     *prometheus.Registry
	output       io.Writer
	httpClient   ports.HTTPClient
}

func defaultOptions() options {
	return options{
		logger: logAdapter.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for server events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithRegistry registers the server's metrics with reg and serves reg on
// /metrics. If not provided, each Server uses its own registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithOutput sets where a Driver prints server replies. Default: io.Discard
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithHTTPClient sets the client a Driver uploads with.
// If not provided, a client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
