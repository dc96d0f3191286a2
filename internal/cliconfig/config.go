package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/lockstep/internal/domain"
)

// Defaults shared by the CLI and the library facade.
const (
	DefaultListenAddr      = "0.0.0.0:8000"
	DefaultUploadDir       = "uploads"
	DefaultServerURL       = "http://localhost:8000"
	DefaultUpdates         = 5
	DefaultTransferFile    = "sample2.txt"
	DefaultIngestWorkers   = 10
	DefaultLogLevel        = "info"
	DefaultMaxUploadMemory = 32 << 20
)

// ServerConfig holds CLI configuration for `lockstep serve`.
type ServerConfig struct {
	ListenAddr      string
	UploadDir       string
	ProcessingDelay time.Duration

	// IngestAddr enables the raw TCP ingest listener when non-empty.
	IngestAddr    string
	IngestWorkers int

	CORSOrigins     []string
	MaxUploadMemory int64
	ShutdownTimeout time.Duration
	LogLevel        string
}

// DriverConfig holds CLI configuration for `lockstep drive`.
type DriverConfig struct {
	ServerURL        string
	Updates          int
	File             string
	HandshakeTimeout time.Duration
	HTTPTimeout      time.Duration
	LogLevel         string
}

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:      DefaultListenAddr,
		UploadDir:       DefaultUploadDir,
		ProcessingDelay: time.Second,
		IngestWorkers:   DefaultIngestWorkers,
		MaxUploadMemory: DefaultMaxUploadMemory,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        DefaultLogLevel,
	}
}

// DefaultDriverConfig returns a DriverConfig with default values.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		ServerURL:        DefaultServerURL,
		Updates:          DefaultUpdates,
		File:             DefaultTransferFile,
		HandshakeTimeout: 10 * time.Second,
		HTTPTimeout:      30 * time.Second,
		LogLevel:         DefaultLogLevel,
	}
}

// Validate checks the configuration for errors.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("%w: upload dir is required", domain.ErrInvalidConfig)
	}
	if c.ProcessingDelay < 0 {
		return fmt.Errorf("%w: processing delay must not be negative", domain.ErrInvalidConfig)
	}
	if c.IngestWorkers <= 0 {
		return fmt.Errorf("%w: ingest workers must be positive", domain.ErrInvalidConfig)
	}
	if c.MaxUploadMemory <= 0 {
		return fmt.Errorf("%w: max upload memory must be positive", domain.ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the configuration for errors and normalizes ServerURL.
func (c *DriverConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: server url: %v", domain.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: server url must be http or https, got %q", domain.ErrInvalidConfig, c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: server url has no host", domain.ErrInvalidConfig)
	}

	// Ensure no trailing slash
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	if c.Updates <= 0 {
		return fmt.Errorf("%w: updates must be positive", domain.ErrInvalidConfig)
	}
	if c.HandshakeTimeout <= 0 || c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", domain.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// StreamURL returns the WebSocket URL of the streaming endpoint.
func (c DriverConfig) StreamURL() string {
	base := strings.TrimRight(c.ServerURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}

// UploadURL returns the URL of the file transfer endpoint.
func (c DriverConfig) UploadURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/upload-file/"
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if positive and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString is setIntFromString for int64 destinations.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setStringsFromString splits a comma-separated list.
func (s *configSetter) setStringsFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*dst = out
}
