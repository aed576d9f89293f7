// Package logsvc implements the seven logger request handlers:
// Initialize, StartLog, CloseLog, WriteLog, SetSeverity, ClearLog and
// ClearAll. It is a direct port of requests.c's do_* functions onto a
// registry.Registry, an adapter.FileSink, an adapter.Clock and an
// adapter.Copier instead of open()/write()/readclock.drv/sys_vircopy; the
// caller's process name is passed in to WriteLog by the dispatcher.
package logsvc

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/opencoff/logsrv/internal/adapter"
	"github.com/opencoff/logsrv/internal/confparse"
	"github.com/opencoff/logsrv/internal/metrics"
	"github.com/opencoff/logsrv/internal/registry"
	"github.com/opencoff/logsrv/internal/render"
	"github.com/opencoff/logsrv/internal/severity"
	"github.com/opencoff/logsrv/internal/status"
)

// Logf is the minimal diagnostic-logging seam a Service needs; it is
// satisfied by go-logger's exported Logger type through a small
// adapter in cmd/logsrvd, keeping this package free of a direct
// dependency on the server's own diagnostic logger.
type Logf interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLog struct{}

func (nopLog) Infof(string, ...interface{})  {}
func (nopLog) Warnf(string, ...interface{})  {}
func (nopLog) Debugf(string, ...interface{}) {}

// DefaultConfigPath is where Initialize reads the logger declarations
// from unless WithConfigPath overrides it.
const DefaultConfigPath = "/etc/logs.conf"

// Service holds the live logger registry and the adapters needed to
// fulfill requests against it. Safe for concurrent use only insofar as
// the caller serializes requests onto it — the dispatcher (component E)
// is responsible for that; Service itself does no locking.
type Service struct {
	reg        atomic.Pointer[registry.Registry]
	configPath string
	sink       adapter.FileSink
	clock      adapter.Clock
	copier     adapter.Copier
	log        Logf
}

// Option configures a Service at construction time.
type Option func(*Service)

func WithConfigPath(path string) Option { return func(s *Service) { s.configPath = path } }
func WithFileSink(f adapter.FileSink) Option { return func(s *Service) { s.sink = f } }
func WithClock(c adapter.Clock) Option        { return func(s *Service) { s.clock = c } }
func WithCopier(c adapter.Copier) Option      { return func(s *Service) { s.copier = c } }
func WithLogf(l Logf) Option                  { return func(s *Service) { s.log = l } }

// New builds a Service. It does not read the config file yet — that
// happens lazily on the first request, or eagerly via Initialize.
func New(opts ...Option) *Service {
	s := &Service{
		configPath: DefaultConfigPath,
		sink:       adapter.OSFileSink{},
		clock:      adapter.SystemClock{},
		copier:     adapter.BoundedCopier{},
		log:        nopLog{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensureInitialized lazily runs Initialize on first use, mirroring
// ensure_initialized()/TRY_ENSURE_INITIALIZED in the original, which
// defers config parsing until it's first needed rather than requiring an
// explicit startup call.
func (s *Service) ensureInitialized() status.Status {
	if s.reg.Load() != nil {
		return status.OK
	}
	return s.Initialize()
}

// Initialize (re)reads the config file and replaces the registry
// wholesale, discarding any previously open logger state — exactly as
// do_initialize frees the entire g_loggers list before reparsing.
func (s *Service) Initialize() status.Status {
	f, err := os.Open(s.configPath)
	if err != nil {
		s.log.Warnf("failed opening config file %q: %v", s.configPath, err)
		return status.ErrInitFailed
	}
	defer f.Close()

	defs, err := confparse.Parse(f)
	if err != nil {
		s.log.Warnf("failed parsing config file %q: %v", s.configPath, err)
		return status.ErrInitFailed
	}

	if dups := registry.DuplicateNames(defs); len(dups) > 0 {
		s.log.Warnf("config file %q declares duplicate logger name(s): %v", s.configPath, dups)
		return status.ErrInvalid
	}

	s.reg.Store(registry.New(defs))
	s.log.Infof("initialized %d loggers from %q", len(defs), s.configPath)
	return status.OK
}

func (s *Service) find(name string) (registry.Definition, *registry.State, status.Status) {
	reg := s.reg.Load()
	def, st, ok := reg.Lookup(name)
	if !ok {
		s.log.Warnf("logger not found: %q", name)
		return registry.Definition{}, nil, status.ErrNoSuchLogger
	}
	return def, st, status.OK
}

// StartLog opens logger for who, creating/truncating or appending to its
// backing file per its Append flag, and resets its runtime severity to
// the configured default.
func (s *Service) StartLog(name string, who uuid.UUID) status.Status {
	s.log.Infof("starting logger %q for %s", name, who)
	if st := s.ensureInitialized(); st != status.OK {
		return st
	}
	def, state, st := s.find(name)
	if st != status.OK {
		return st
	}

	if state.Open {
		s.log.Warnf("logger already open: %q", name)
		return status.ErrLoggerOpen
	}

	if def.Destination == registry.DestFile {
		fh, err := s.sink.Open(def.Filename, def.Append)
		if err != nil {
			s.log.Warnf("failed to open %q for logger %q: %v", def.Filename, name, err)
			return status.ErrExternal
		}
		state.SetFile(fh)
	}

	state.Severity = def.Severity
	state.Open = true
	state.OpenedBy = who
	s.log.Infof("opened logger %q with severity %s", name, state.Severity)
	return status.OK
}

// CloseLog closes logger on behalf of who. Only the opener may close it.
// A failure to close the backing file is logged but still reports OK —
// the original's do_close_log falls through to its set_closed label
// (unconditionally, via dead code after a goto) on a close error, so the
// state is always reset to closed regardless.
func (s *Service) CloseLog(name string, who uuid.UUID) status.Status {
	s.log.Infof("closing logger %q for %s", name, who)
	if st := s.ensureInitialized(); st != status.OK {
		return st
	}
	def, state, st := s.find(name)
	if st != status.OK {
		return st
	}

	if !state.Open {
		s.log.Warnf("logger %q is not open, but closing was requested", name)
		return status.ErrLoggerNotOpen
	}
	if state.OpenedBy != who {
		s.log.Warnf("closing of logger %q requested by %s, but it is not the owner", name, who)
		return status.ErrPermissionDenied
	}

	if def.Destination == registry.DestFile && state.File() != nil {
		if err := state.File().Close(); err != nil {
			s.log.Warnf("failed to close file for logger %q: %v", name, err)
		}
	}

	state.Open = false
	state.OpenedBy = uuid.Nil
	state.SetFile(nil)
	return status.OK
}

// WriteLog renders msg through logger's format template and writes it to
// the logger's destination, provided the caller owns it, it is open,
// and the message's severity meets the logger's current threshold.
// Messages below threshold are silently accepted (status OK) without
// being written, matching do_write_log's early return.
func (s *Service) WriteLog(name string, sev severity.Severity, msg []byte, who uuid.UUID, procName string) status.Status {
	s.log.Debugf("writing to logger %q from %s", name, who)
	if st := s.ensureInitialized(); st != status.OK {
		return st
	}
	def, state, st := s.find(name)
	if st != status.OK {
		return st
	}

	if !state.Open {
		s.log.Warnf("logger not open: %q", name)
		return status.ErrLoggerNotOpen
	}
	if state.OpenedBy != who {
		s.log.Warnf("%s tried to log through %q, but it is not the owner", who, name)
		return status.ErrPermissionDenied
	}
	if !sev.Valid() {
		s.log.Warnf("rejected write to logger %q: invalid severity %d", name, int(sev))
		return status.ErrInvalid
	}
	if len(msg) > adapter.MaxMessageLen {
		s.log.Warnf("rejected write to logger %q: message too large (%d bytes)", name, len(msg))
		return status.ErrInvalid
	}

	bounded := make([]byte, len(msg))
	if _, err := s.copier.Copy(bounded, msg); err != nil {
		s.log.Warnf("copying message for logger %q failed: %v", name, err)
		return status.ErrExternal
	}

	if sev < state.Severity {
		s.log.Debugf("ignored message for logger %q due to its severity (%s)", name, sev)
		metrics.WriteDropsTotal.Inc()
		return status.OK
	}

	var line [adapter.MaxMessageLen + 512]byte
	n := render.Render(line[:], def.Format, sev, s.clock.Now(), procName, bounded)
	if n == len(line) {
		metrics.RenderTruncationsTotal.Inc()
	}

	if def.Destination == registry.DestFile {
		fh := state.File()
		if fh == nil {
			s.log.Warnf("logger %q has no open file handle", name)
			return status.ErrExternal
		}
		if _, err := fh.Write(line[:n]); err != nil {
			s.log.Warnf("failed writing log line to %q for logger %q: %v", def.Filename, name, err)
			return status.ErrExternal
		}
	} else {
		w := stdoutOrStderr(def.Destination)
		if _, err := w.Write(append([]byte("[L] "), line[:n]...)); err != nil {
			s.log.Warnf("failed writing log line for logger %q: %v", name, err)
			return status.ErrExternal
		}
	}

	return status.OK
}

func stdoutOrStderr(d registry.Destination) io.Writer {
	if d == registry.DestStderr {
		return os.Stderr
	}
	return os.Stdout
}

// SetSeverity changes logger's runtime severity threshold. Only
// permitted while the logger is closed.
func (s *Service) SetSeverity(name string, sev severity.Severity) status.Status {
	s.log.Infof("setting severity of logger %q to %s", name, sev)
	if st := s.ensureInitialized(); st != status.OK {
		return st
	}
	_, state, st := s.find(name)
	if st != status.OK {
		return st
	}
	if state.Open {
		s.log.Warnf("cannot set severity for logger %q because it is open", name)
		return status.ErrLoggerOpen
	}
	if !sev.Valid() {
		return status.ErrInvalid
	}
	state.Severity = sev
	return status.OK
}

// ClearLog truncates logger's backing file to zero length. The logger
// must be closed.
func (s *Service) ClearLog(name string) status.Status {
	s.log.Infof("clearing log for logger %q", name)
	if st := s.ensureInitialized(); st != status.OK {
		return st
	}
	def, state, st := s.find(name)
	if st != status.OK {
		return st
	}
	if state.Open {
		s.log.Warnf("cannot clear log for %q as it is open", name)
		return status.ErrLoggerOpen
	}
	if def.Destination == registry.DestFile {
		if err := s.sink.Truncate(def.Filename); err != nil {
			s.log.Warnf("failed to truncate %q for logger %q: %v", def.Filename, name, err)
			return status.ErrExternal
		}
	}
	return status.OK
}

// ClearAll clears every registered logger. It never short-circuits on
// the first failure: every logger is attempted, and if any of them
// fails, ClearAll reports ErrLoggerOpen regardless of that logger's
// actual failure status — matching do_clear_logs, which only ever
// records LS_ERR_LOGGER_OPEN for any non-OK result from do_clear_log.
func (s *Service) ClearAll() status.Status {
	s.log.Infof("clearing all logs")
	if st := s.ensureInitialized(); st != status.OK {
		return st
	}

	reg := s.reg.Load()
	result := status.OK
	reg.Each(func(name string, _ registry.Definition, _ *registry.State) bool {
		if st := s.ClearLog(name); st != status.OK {
			result = status.ErrLoggerOpen
		}
		return true
	})
	return result
}
