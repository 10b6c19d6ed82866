package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/devsync/internal/adapters/fs"
	"github.com/bft-labs/devsync/internal/adapters/ws"
	"github.com/bft-labs/devsync/internal/app"
	"github.com/bft-labs/devsync/internal/cliconfig"
	"github.com/bft-labs/devsync/internal/domain"
	"github.com/bft-labs/devsync/internal/ports"
	"github.com/bft-labs/devsync/pkg/devsync"
	devlog "github.com/bft-labs/devsync/pkg/log"
	"github.com/bft-labs/devsync/pkg/navigation"
	"github.com/bft-labs/devsync/pkg/store"
	"github.com/bft-labs/devsync/plugins/sessionwatch"
)

const helpDescription = `
Mirror an application state timeline into a time-travel debugging tool.

Highlights:
  - Every committed mutation shows up as an action on the tool's timeline.
  - Jumps in the tool are applied back without being echoed, routes included.
  - Recorded sessions (JSON or JSONC) can be pushed to the tool on demand or
    by dropping them into a watched directory.
  - Configure via file, env, or flags.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  devsync --tool-url ws://127.0.0.1:8000/devtools --session-dir ./sessions
  devsync import ./sessions/checkout.jsonc
  devsync probe --tool-url wss://devtools.internal/socket
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	// loadConfig applies file and environment settings underneath any flag
	// the user set explicitly, then validates.
	loadConfig := func(cmd *cobra.Command) error {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}

		// DEVSYNC_* override the file but not explicit flags.
		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		log = log.Level(cfg.Level())
		log.Debug().Interface("config", cfg).Msg("configuration")
		return nil
	}

	root := &cobra.Command{
		Use:     "devsync",
		Short:   "Mirror an application state timeline into a time-travel debugging tool",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(cfg, log)
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Push a recorded session to the tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cfg, log, args[0])
		},
	}

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Report whether the tool is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), cfg, log)
		},
	}

	root.AddCommand(importCmd, probeCmd)

	// Flags
	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.devsync/config.toml)")
	flags.StringVar(&cfg.ToolURL, "tool-url", cfg.ToolURL, "websocket endpoint of the debugging tool")
	flags.StringVar(&cfg.Name, "name", cfg.Name, "instance name shown in the tool")
	flags.StringVar(&cfg.InstanceID, "instance-id", cfg.InstanceID, "instance id kept across reconnects (default: random)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	flags.IntVar(&cfg.DialAttempts, "dial-attempts", cfg.DialAttempts, "dial attempts before the tool is considered absent")
	flags.DurationVar(&cfg.BackoffInitial, "backoff-initial", cfg.BackoffInitial, "initial wait between dial attempts")
	flags.DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "maximum wait between dial attempts")
	flags.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "websocket handshake timeout")
	flags.DurationVar(&cfg.PingInterval, "ping-interval", cfg.PingInterval, "websocket keepalive interval")

	root.Flags().StringVar(&cfg.InitialPath, "initial-path", cfg.InitialPath, "route the mirrored application starts on")
	root.Flags().StringVar(&cfg.SessionDir, "session-dir", cfg.SessionDir, "directory watched for recorded sessions to import (optional)")
	root.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "delay after a session file change before importing")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on (optional)")
	root.Flags().IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "maximum tool commands waiting to be applied")
	root.Flags().BoolVar(&cfg.Offline, "offline", cfg.Offline, "run without a tool connection")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("devsync")
		os.Exit(1)
	}
}

func newExtension(cfg cliconfig.Config, logger devlog.Logger) *ws.Extension {
	return ws.NewExtension(cfg.ToolURL,
		ws.WithLogger(logger),
		ws.WithHandshakeTimeout(cfg.HandshakeTimeout),
		ws.WithPingInterval(cfg.PingInterval),
	)
}

// runMirror bridges an in-memory store and route history to the tool until
// a signal arrives.
func runMirror(cfg cliconfig.Config, log zerolog.Logger) error {
	logger := devlog.NewZerologAdapterWithLogger(log)

	s := store.New()
	history := navigation.NewHistory(cfg.InitialPath)

	opts := []devsync.Option{
		devsync.WithLogger(logger),
		devsync.WithNavigationSource(history),
		devsync.WithRouterHistory(history),
		devsync.WithEventHandler(&logHandler{log: log}),
	}
	if !cfg.Offline {
		opts = append(opts, devsync.WithExtension(newExtension(cfg, logger)))
	}
	if cfg.SessionDir != "" {
		watchCfg := sessionwatch.DefaultConfig(cfg.SessionDir)
		if cfg.Debounce > 0 {
			watchCfg.DebounceDelay = cfg.Debounce
		}
		opts = append(opts, sessionwatch.WithSessionWatch(watchCfg))
	}

	d, err := devsync.New(s, devsync.Config{
		Name:           cfg.Name,
		InstanceID:     cfg.InstanceID,
		QueueSize:      cfg.QueueSize,
		DialAttempts:   cfg.DialAttempts,
		BackoffInitial: cfg.BackoffInitial,
		BackoffMax:     cfg.BackoffMax,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create devsync: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var metrics *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
			}
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start devsync: %w", err)
	}
	log.Info().Bool("connected", d.Connected()).Str("path", history.CurrentPath()).Msg("mirroring")

	doneCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if d.Status() == devsync.StateCrashed {
					close(doneCh)
					return
				}
			}
		}
	}()

	select {
	case <-sigCh:
		log.Info().Msg("received signal, stopping...")
	case <-doneCh:
		log.Error().Msg("devsync crashed")
	}

	if metrics != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = metrics.Shutdown(shutdownCtx)
	}

	if d.Status() == devsync.StateCrashed {
		return errors.New("devsync crashed")
	}
	if err := d.Stop(); err != nil {
		return fmt.Errorf("stop devsync: %w", err)
	}
	return nil
}

// runImport replays one session file into the tool and exits.
func runImport(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger, path string) error {
	if cfg.Offline {
		return errors.New("import needs a tool connection; remove --offline")
	}

	session, err := fs.LoadSession(path)
	if err != nil {
		return err
	}
	raw, err := domain.ImportCommand(session).Encode()
	if err != nil {
		return fmt.Errorf("encode import: %w", err)
	}

	logger := devlog.NewZerologAdapterWithLogger(log)
	bridge := app.NewBridge(app.BridgeConfig{
		Name:           cfg.Name,
		InstanceID:     cfg.InstanceID,
		DialAttempts:   cfg.DialAttempts,
		BackoffInitial: cfg.BackoffInitial,
		BackoffMax:     cfg.BackoffMax,
	}, app.Dependencies{
		Store:     store.New(),
		Extension: newExtension(cfg, logger),
		Logger:    logger,
	})
	defer bridge.Close()

	if err := bridge.Open(ctx); err != nil {
		return err
	}
	if !bridge.Connected() {
		return fmt.Errorf("%w at %s", domain.ErrToolAbsent, cfg.ToolURL)
	}
	if err := bridge.HandleMessage(ctx, raw); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	log.Info().
		Str("file", path).
		Int("states", len(session.ComputedStates)).
		Msg("session imported")
	return nil
}

// runProbe dials the tool once and reports the outcome.
func runProbe(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) error {
	ext := newExtension(cfg, devlog.NewZerologAdapterWithLogger(log))
	defer ext.Disconnect()

	start := time.Now()
	conn, err := ext.Connect(ctx, ports.ConnectConfig{Name: cfg.Name, InstanceID: cfg.InstanceID})
	if err != nil {
		fmt.Fprintf(os.Stdout, "tool unreachable at %s: %v\n", cfg.ToolURL, err)
		return fmt.Errorf("%w: %v", domain.ErrToolAbsent, err)
	}
	conn.Unsubscribe()

	fmt.Fprintf(os.Stdout, "tool reachable at %s (%s)\n", cfg.ToolURL, time.Since(start).Round(time.Millisecond))
	return nil
}

// logHandler logs sync events at debug level.
type logHandler struct {
	devsync.BaseEventHandler
	log zerolog.Logger
}

func (h *logHandler) OnStateChange(event devsync.StateChangeEvent) {
	h.log.Debug().
		Str("from", event.Previous.String()).
		Str("to", event.Current.String()).
		Str("reason", event.Reason).
		Msg("state change")
}

func (h *logHandler) OnSendError(event devsync.SendErrorEvent) {
	h.log.Warn().Err(event.Error).Str("action", event.Action).Msg("send failed")
}

func (h *logHandler) OnCommand(event devsync.CommandEvent) {
	ev := h.log.Debug()
	if event.Error != nil {
		ev = h.log.Warn().Err(event.Error)
	}
	ev.Str("type", event.Type).Msg("tool command")
}
