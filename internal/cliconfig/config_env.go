package cliconfig

import "os"

// Environment variable names.
const (
	envListenAddr       = "LOCKSTEP_LISTEN_ADDR"
	envUploadDir        = "LOCKSTEP_UPLOAD_DIR"
	envProcessingDelay  = "LOCKSTEP_PROCESSING_DELAY"
	envIngestAddr       = "LOCKSTEP_INGEST_ADDR"
	envIngestWorkers    = "LOCKSTEP_INGEST_WORKERS"
	envCORSOrigins      = "LOCKSTEP_CORS_ORIGINS"
	envMaxUploadMemory  = "LOCKSTEP_MAX_UPLOAD_MEMORY"
	envShutdownTimeout  = "LOCKSTEP_SHUTDOWN_TIMEOUT"
	envLogLevel         = "LOCKSTEP_LOG_LEVEL"
	envServerURL        = "LOCKSTEP_SERVER_URL"
	envUpdates          = "LOCKSTEP_UPDATES"
	envFile             = "LOCKSTEP_FILE"
	envHandshakeTimeout = "LOCKSTEP_HANDSHAKE_TIMEOUT"
	envHTTPTimeout      = "LOCKSTEP_HTTP_TIMEOUT"
)

// ApplyServerEnvConfig applies LOCKSTEP_* variables to cfg.
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyServerEnvConfig(cfg *ServerConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv(envListenAddr), &cfg.ListenAddr)
	s.setString("upload-dir", os.Getenv(envUploadDir), &cfg.UploadDir)
	s.setString("ingest-addr", os.Getenv(envIngestAddr), &cfg.IngestAddr)
	s.setString("log-level", os.Getenv(envLogLevel), &cfg.LogLevel)
	s.setStringsFromString("cors-origin", os.Getenv(envCORSOrigins), &cfg.CORSOrigins)

	if err := s.setDuration("delay", os.Getenv(envProcessingDelay), &cfg.ProcessingDelay); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv(envShutdownTimeout), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("ingest-workers", os.Getenv(envIngestWorkers), &cfg.IngestWorkers); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-upload-memory", os.Getenv(envMaxUploadMemory), &cfg.MaxUploadMemory); err != nil {
		return err
	}
	return nil
}

// ApplyDriverEnvConfig applies LOCKSTEP_* variables to cfg.
func ApplyDriverEnvConfig(cfg *DriverConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("server", os.Getenv(envServerURL), &cfg.ServerURL)
	s.setString("file", os.Getenv(envFile), &cfg.File)
	s.setString("log-level", os.Getenv(envLogLevel), &cfg.LogLevel)

	if err := s.setIntFromString("updates", os.Getenv(envUpdates), &cfg.Updates); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", os.Getenv(envHandshakeTimeout), &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv(envHTTPTimeout), &cfg.HTTPTimeout); err != nil {
		return err
	}
	return nil
}
