package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	logger "github.com/opencoff/go-logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/opencoff/logsrv/internal/adapter"
	"github.com/opencoff/logsrv/internal/confparse"
	"github.com/opencoff/logsrv/internal/logsvc"
	"github.com/opencoff/logsrv/internal/metrics"
	"github.com/opencoff/logsrv/internal/runtimecfg"
	"github.com/opencoff/logsrv/internal/server"
	"github.com/opencoff/logsrv/internal/status"
)

// version is overridden at link time via -ldflags "-X main.version=...".
var version = "dev"

var bootstrapPath string

var rootCmd = &cobra.Command{
	Use:   "logsrvd",
	Short: "logsrvd serves the logging IPC service over a Unix domain socket",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bootstrapPath, "config", "/etc/logsrvd.toml",
		"path to the server's own bootstrap config (TOML)")

	rootCmd.AddCommand(serveCmd, validateConfigCmd, versionCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the logging service daemon",
	RunE:  runServe,
}

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config [path]",
	Short: "parse a logger config file and report the first syntax error, if any",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidateConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the logsrvd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	path := runtimecfg.Default().LoggerConfig
	if len(args) == 1 {
		path = args[0]
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	defs, err := confparse.Parse(f)
	if err != nil {
		return err
	}

	fmt.Printf("%q: %d logger(s) defined:\n", path, len(defs))
	for _, d := range defs {
		fmt.Printf("  %-32s dest=%-8s severity=%-6s append=%v\n", d.Name, d.Destination, d.Severity, d.Append)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := runtimecfg.Load(bootstrapPath)
	if err != nil {
		return fmt.Errorf("loading bootstrap config: %w", err)
	}

	dlog, err := logger.NewLogger(cfg.LogDest, cfg.Priority(), "logsrvd", 0)
	if err != nil {
		return fmt.Errorf("starting diagnostic logger: %w", err)
	}
	defer dlog.Close()

	lf := difflogAdapter{dlog}

	svc := logsvc.New(
		logsvc.WithConfigPath(cfg.LoggerConfig),
		logsvc.WithLogf(lf),
	)
	if st := svc.Initialize(); st != status.OK {
		dlog.Warn("initial config load from %q returned status %s", cfg.LoggerConfig, st)
	}

	if err := os.RemoveAll(cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %q: %w", cfg.SocketPath, err)
	}
	if dir := filepath.Dir(cfg.SocketPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating socket directory %q: %w", dir, err)
		}
	}

	addr, err := net.ResolveUnixAddr("unix", cfg.SocketPath)
	if err != nil {
		return err
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", cfg.SocketPath, err)
	}
	defer os.RemoveAll(cfg.SocketPath)

	srv := server.New(svc, adapter.PeerCredResolver{}.Name, cfg.DispatchQueue, lf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, dlog)
	}

	stopWatch := watchConfigReloads(ctx, cfg.LoggerConfig, svc, dlog)
	defer stopWatch()

	dlog.Info("serving on %q", cfg.SocketPath)
	err = srv.Serve(ctx, ln)
	if ctx.Err() != nil {
		dlog.Info("shutting down")
		return nil
	}
	return err
}

// startMetricsServer runs a Prometheus /metrics endpoint until ctx is
// canceled. Failures are logged, not fatal — metrics are observability,
// not the service's job.
func startMetricsServer(ctx context.Context, addr string, dlog logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			dlog.Warn("metrics server on %q failed: %v", addr, err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// watchConfigReloads watches configPath's directory (editors commonly
// replace a file via rename rather than an in-place write) and calls
// svc.Initialize() whenever configPath itself is created or written,
// debounced so a burst of filesystem events collapses into one reload.
func watchConfigReloads(ctx context.Context, configPath string, svc *logsvc.Service, dlog logger.Logger) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		dlog.Warn("config hot-reload disabled: %v", err)
		return func() {}
	}

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		dlog.Warn("config hot-reload disabled: watching %q: %v", dir, err)
		watcher.Close()
		return func() {}
	}

	target := filepath.Clean(configPath)

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(200 * time.Millisecond)
					timerC = timer.C
				} else {
					timer.Reset(200 * time.Millisecond)
				}

			case <-timerC:
				timerC = nil
				st := svc.Initialize()
				outcome := "ok"
				if st != status.OK {
					outcome = st.String()
				}
				metrics.ConfigReloadsTotal.WithLabelValues("fsnotify", outcome).Inc()
				dlog.Info("reloaded %q after change: %s", configPath, outcome)

			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				dlog.Warn("config watcher error: %v", werr)
			}
		}
	}()

	return func() {}
}
