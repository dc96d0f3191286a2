package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/lockstep/internal/adapters/log"
	"github.com/bft-labs/lockstep/internal/cliconfig"
	"github.com/bft-labs/lockstep/internal/configwatch"
	"github.com/bft-labs/lockstep/pkg/lockstep"
)

const longHelp = `Run a lock-step streaming server, or drive a session against one.

The server acknowledges every WebSocket message on /ws with
"Processed: <message>" after a processing delay, and stores files posted
to /upload-file/. The driver sends Start followed by N updates, then
uploads one file.

Configuration comes from flags, LOCKSTEP_* environment variables and the
[server]/[driver] tables of a TOML file, in that order of precedence.`

var exampleUsage = strings.TrimSpace(`
  lockstep serve --listen 0.0.0.0:8000 --delay 1s
  lockstep serve --config $HOME/.lockstep/config.toml --ingest-addr :8080
  lockstep drive --server http://localhost:8000 --updates 5 --file sample2.txt
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "lockstep",
		Short:         "Lock-step streaming server and driver",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to config file (default: $HOME/.lockstep/config.toml)")

	root.AddCommand(newServeCommand(), newDriveCommand())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("lockstep")
		os.Exit(1)
	}
}

// changedFlags returns the set of flags explicitly set on the command line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// configPath resolves --config, falling back to the default path if it exists.
func configPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		p = cliconfig.DefaultConfigPath()
	}
	if p == "" || !cliconfig.FileExists(p) {
		return ""
	}
	return p
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newServeCommand() *cobra.Command {
	cfg := cliconfig.DefaultServerConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the streaming and file transfer server",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := changedFlags(cmd)
			cfgFile := configPath(cmd)

			if cfgFile != "" {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyServerFileConfig(&cfg, fc.Server, changed); err != nil {
					return err
				}
			}
			if err := cliconfig.ApplyServerEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.SetLogLevel(cfg.LogLevel); err != nil {
				return err
			}
			log := cliconfig.Logger()
			log.Info().Interface("config", cfg).Msg("configuration")

			if log.GetLevel() > zerolog.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			srv, err := lockstep.New(lockstep.Config{
				ListenAddr:      cfg.ListenAddr,
				UploadDir:       cfg.UploadDir,
				ProcessingDelay: cfg.ProcessingDelay,
				IngestAddr:      cfg.IngestAddr,
				IngestWorkers:   cfg.IngestWorkers,
				CORSOrigins:     cfg.CORSOrigins,
				MaxUploadMemory: cfg.MaxUploadMemory,
				ShutdownTimeout: cfg.ShutdownTimeout,
			}, lockstep.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)))
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			// A zero delay means "none" on the command line.
			srv.SetProcessingDelay(cfg.ProcessingDelay)

			ctx, cancel := signalContext()
			defer cancel()

			if err := srv.Start(ctx); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			if cfgFile != "" {
				w := configwatch.New(cfgFile, configwatch.DefaultDebounce, func() {
					delay, ok, err := cliconfig.ReloadProcessingDelay(cfgFile, changed)
					if err != nil {
						log.Warn().Err(err).Str("path", cfgFile).Msg("config reload failed")
						return
					}
					if ok {
						srv.SetProcessingDelay(delay)
					}
					log.Info().Msg("config reloaded; only processing_delay applies without restart")
				}, logAdapter.NewZerologAdapterWithLogger(log))
				go func() {
					if err := w.Run(ctx); err != nil {
						log.Warn().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			<-ctx.Done()
			log.Info().Msg("received signal, stopping...")

			if err := srv.Stop(); err != nil {
				return fmt.Errorf("stop server: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	f.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "directory receiving uploaded files")
	f.DurationVar(&cfg.ProcessingDelay, "delay", cfg.ProcessingDelay, "processing delay before each reply")
	f.StringVar(&cfg.IngestAddr, "ingest-addr", cfg.IngestAddr, "raw TCP ingest address (disabled when empty)")
	f.IntVar(&cfg.IngestWorkers, "ingest-workers", cfg.IngestWorkers, "concurrent raw ingest uploads")
	f.StringSliceVar(&cfg.CORSOrigins, "cors-origin", cfg.CORSOrigins, "allowed CORS origin (repeatable; default any)")
	f.Int64Var(&cfg.MaxUploadMemory, "max-upload-memory", cfg.MaxUploadMemory, "multipart memory limit in bytes")
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	return cmd
}

func newDriveCommand() *cobra.Command {
	cfg := cliconfig.DefaultDriverConfig()

	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Run one streaming session, then upload a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := changedFlags(cmd)

			if cfgFile := configPath(cmd); cfgFile != "" {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyDriverFileConfig(&cfg, fc.Driver, changed); err != nil {
					return err
				}
			}
			if err := cliconfig.ApplyDriverEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.SetLogLevel(cfg.LogLevel); err != nil {
				return err
			}
			log := cliconfig.Logger()

			d, err := lockstep.NewDriver(lockstep.DriverConfig{
				ServerURL:        cfg.ServerURL,
				Updates:          cfg.Updates,
				File:             cfg.File,
				HandshakeTimeout: cfg.HandshakeTimeout,
				HTTPTimeout:      cfg.HTTPTimeout,
			},
				lockstep.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)),
				lockstep.WithOutput(cmd.OutOrStdout()),
			)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			report, err := d.Run(ctx)
			if err != nil {
				return err
			}
			if report.Truncated {
				log.Warn().
					Int("exchanges", report.Exchanges()).
					Int("expected", cfg.Updates).
					Msg("session closed by server before all updates")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "server base URL")
	f.IntVar(&cfg.Updates, "updates", cfg.Updates, "number of updates after Start")
	f.StringVar(&cfg.File, "file", cfg.File, "file to upload after the session (empty to skip)")
	f.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "WebSocket handshake timeout")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "upload HTTP timeout")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	return cmd
}
