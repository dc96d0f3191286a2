package cliconfig

import (
	"reflect"
	"testing"
	"time"
)

func TestApplyServerEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		expected func() ServerConfig
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"LOCKSTEP_LISTEN_ADDR":       ":9001",
				"LOCKSTEP_UPLOAD_DIR":        "/env/uploads",
				"LOCKSTEP_PROCESSING_DELAY":  "10ms",
				"LOCKSTEP_INGEST_ADDR":       ":8080",
				"LOCKSTEP_INGEST_WORKERS":    "2",
				"LOCKSTEP_CORS_ORIGINS":      "http://a.example, http://b.example,",
				"LOCKSTEP_MAX_UPLOAD_MEMORY": "2048",
				"LOCKSTEP_SHUTDOWN_TIMEOUT":  "1m",
				"LOCKSTEP_LOG_LEVEL":         "warn",
			},
			changed: map[string]bool{},
			expected: func() ServerConfig {
				return ServerConfig{
					ListenAddr:      ":9001",
					UploadDir:       "/env/uploads",
					ProcessingDelay: 10 * time.Millisecond,
					IngestAddr:      ":8080",
					IngestWorkers:   2,
					CORSOrigins:     []string{"http://a.example", "http://b.example"},
					MaxUploadMemory: 2048,
					ShutdownTimeout: time.Minute,
					LogLevel:        "warn",
				}
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"LOCKSTEP_LISTEN_ADDR": ":9001",
				"LOCKSTEP_UPLOAD_DIR":  "/env/uploads",
			},
			changed: map[string]bool{"listen": true},
			expected: func() ServerConfig {
				c := DefaultServerConfig()
				c.UploadDir = "/env/uploads"
				return c
			},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"LOCKSTEP_PROCESSING_DELAY": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"LOCKSTEP_INGEST_WORKERS": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int64",
			envVars: map[string]string{"LOCKSTEP_MAX_UPLOAD_MEMORY": "lots"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "ignores non-positive int",
			envVars:  map[string]string{"LOCKSTEP_INGEST_WORKERS": "0"},
			changed:  map[string]bool{},
			expected: DefaultServerConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := DefaultServerConfig()
			err := ApplyServerEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyServerEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if want := tt.expected(); !reflect.DeepEqual(cfg, want) {
				t.Errorf("config = %+v, want %+v", cfg, want)
			}
		})
	}
}

func TestApplyDriverEnvConfig(t *testing.T) {
	t.Setenv("LOCKSTEP_SERVER_URL", "http://env:8000")
	t.Setenv("LOCKSTEP_UPDATES", "3")
	t.Setenv("LOCKSTEP_FILE", "env.txt")
	t.Setenv("LOCKSTEP_HANDSHAKE_TIMEOUT", "4s")
	t.Setenv("LOCKSTEP_HTTP_TIMEOUT", "6s")

	cfg := DefaultDriverConfig()
	if err := ApplyDriverEnvConfig(&cfg, map[string]bool{"file": true}); err != nil {
		t.Fatalf("ApplyDriverEnvConfig() error = %v", err)
	}

	want := DefaultDriverConfig()
	want.ServerURL = "http://env:8000"
	want.Updates = 3
	want.HandshakeTimeout = 4 * time.Second
	want.HTTPTimeout = 6 * time.Second
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}

	t.Setenv("LOCKSTEP_UPDATES", "x")
	if err := ApplyDriverEnvConfig(&cfg, nil); err == nil {
		t.Error("ApplyDriverEnvConfig() expected error for invalid updates")
	}
}
