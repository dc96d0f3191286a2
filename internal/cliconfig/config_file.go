package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/lockstep/internal/domain"
)

// FileConfig is the TOML layout: one table per subcommand.
// Durations are strings to keep the file TOML friendly.
type FileConfig struct {
	Server ServerFileConfig `toml:"server"`
	Driver DriverFileConfig `toml:"driver"`
}

// ServerFileConfig mirrors ServerConfig.
type ServerFileConfig struct {
	ListenAddr      string   `toml:"listen_addr"`
	UploadDir       string   `toml:"upload_dir"`
	ProcessingDelay string   `toml:"processing_delay"`
	IngestAddr      string   `toml:"ingest_addr"`
	IngestWorkers   int      `toml:"ingest_workers"`
	CORSOrigins     []string `toml:"cors_origins"`
	MaxUploadMemory int64    `toml:"max_upload_memory"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	LogLevel        string   `toml:"log_level"`
}

// DriverFileConfig mirrors DriverConfig.
type DriverFileConfig struct {
	ServerURL        string `toml:"server_url"`
	Updates          int    `toml:"updates"`
	File             string `toml:"file"`
	HandshakeTimeout string `toml:"handshake_timeout"`
	HTTPTimeout      string `toml:"http_timeout"`
	LogLevel         string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.lockstep/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".lockstep", "config.toml")
	}
	return ""
}

// ApplyServerFileConfig applies the [server] table, skipping flags in changed.
func ApplyServerFileConfig(cfg *ServerConfig, fc ServerFileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("upload-dir", fc.UploadDir, &cfg.UploadDir)
	s.setString("ingest-addr", fc.IngestAddr, &cfg.IngestAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setStrings("cors-origin", fc.CORSOrigins, &cfg.CORSOrigins)

	if err := s.setDuration("delay", fc.ProcessingDelay, &cfg.ProcessingDelay); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("ingest-workers", fc.IngestWorkers, &cfg.IngestWorkers)
	s.setInt64("max-upload-memory", fc.MaxUploadMemory, &cfg.MaxUploadMemory)
	return nil
}

// ApplyDriverFileConfig applies the [driver] table, skipping flags in changed.
func ApplyDriverFileConfig(cfg *DriverConfig, fc DriverFileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("server", fc.ServerURL, &cfg.ServerURL)
	s.setString("file", fc.File, &cfg.File)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setInt("updates", fc.Updates, &cfg.Updates)

	if err := s.setDuration("handshake-timeout", fc.HandshakeTimeout, &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	return nil
}

// ReloadProcessingDelay re-reads path and returns the processing delay it
// sets. ok is false when the file does not set one, or when a flag or
// environment variable already fixed the delay for this process.
func ReloadProcessingDelay(path string, changed map[string]bool) (delay time.Duration, ok bool, err error) {
	if changed["delay"] || os.Getenv(envProcessingDelay) != "" {
		return 0, false, nil
	}
	fc, err := LoadFileConfig(path)
	if err != nil {
		return 0, false, err
	}
	if fc.Server.ProcessingDelay == "" {
		return 0, false, nil
	}
	if err := newConfigSetter(nil).setDuration("delay", fc.Server.ProcessingDelay, &delay); err != nil {
		return 0, false, err
	}
	if delay < 0 {
		return 0, false, fmt.Errorf("%w: processing delay must not be negative", domain.ErrInvalidConfig)
	}
	return delay, true, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
