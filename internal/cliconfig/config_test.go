package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	if cfg.ListenAddr != "0.0.0.0:8000" {
		t.Errorf("ListenAddr = %v, want 0.0.0.0:8000", cfg.ListenAddr)
	}
	if cfg.ProcessingDelay != time.Second {
		t.Errorf("ProcessingDelay = %v, want 1s", cfg.ProcessingDelay)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %v, want uploads", cfg.UploadDir)
	}
	if cfg.IngestAddr != "" {
		t.Errorf("IngestAddr = %v, want disabled", cfg.IngestAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestDefaultDriverConfig(t *testing.T) {
	cfg := DefaultDriverConfig()

	if cfg.Updates != 5 {
		t.Errorf("Updates = %v, want 5", cfg.Updates)
	}
	if cfg.File != "sample2.txt" {
		t.Errorf("File = %v, want sample2.txt", cfg.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{"defaults", func(*ServerConfig) {}, false},
		{"zero delay", func(c *ServerConfig) { c.ProcessingDelay = 0 }, false},
		{"negative delay", func(c *ServerConfig) { c.ProcessingDelay = -time.Second }, true},
		{"missing listen", func(c *ServerConfig) { c.ListenAddr = "" }, true},
		{"missing upload dir", func(c *ServerConfig) { c.UploadDir = "" }, true},
		{"zero workers", func(c *ServerConfig) { c.IngestWorkers = 0 }, true},
		{"zero memory", func(c *ServerConfig) { c.MaxUploadMemory = 0 }, true},
		{"zero shutdown", func(c *ServerConfig) { c.ShutdownTimeout = 0 }, true},
		{"bad log level", func(c *ServerConfig) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDriverConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		serverURL     string
		updates       int
		wantErr       bool
		wantServerURL string
	}{
		{"plain", "http://localhost:8000", 5, false, "http://localhost:8000"},
		{"trailing slash", "https://example.com/", 1, false, "https://example.com"},
		{"ws scheme", "ws://localhost:8000", 5, true, ""},
		{"no host", "http://", 5, true, ""},
		{"zero updates", "http://localhost:8000", 0, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDriverConfig()
			cfg.ServerURL = tt.serverURL
			cfg.Updates = tt.updates

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.ServerURL != tt.wantServerURL {
				t.Errorf("ServerURL = %v, want %v", cfg.ServerURL, tt.wantServerURL)
			}
		})
	}
}

func TestDriverConfig_URLs(t *testing.T) {
	tests := []struct {
		serverURL  string
		wantStream string
		wantUpload string
	}{
		{"http://localhost:8000", "ws://localhost:8000/ws", "http://localhost:8000/upload-file/"},
		{"https://example.com/", "wss://example.com/ws", "https://example.com/upload-file/"},
	}

	for _, tt := range tests {
		cfg := DriverConfig{ServerURL: tt.serverURL}
		if got := cfg.StreamURL(); got != tt.wantStream {
			t.Errorf("StreamURL(%s) = %v, want %v", tt.serverURL, got, tt.wantStream)
		}
		if got := cfg.UploadURL(); got != tt.wantUpload {
			t.Errorf("UploadURL(%s) = %v, want %v", tt.serverURL, got, tt.wantUpload)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("loud"); err == nil {
		t.Error("SetLogLevel(loud) error = nil")
	}
	if err := SetLogLevel("warn"); err != nil {
		t.Fatalf("SetLogLevel(warn) error = %v", err)
	}
	if got := Logger().GetLevel().String(); got != "warn" {
		t.Errorf("level = %v, want warn", got)
	}
	_ = SetLogLevel(DefaultLogLevel)
}
