// Package server implements the request dispatcher: it accepts Unix
// domain socket connections, decodes one wire.Request per connection at
// a time, and funnels every decoded request through a single buffered
// channel drained by one goroutine — the same single-consumer pattern
// go-logger's qrunner uses for its own log-event channel. This keeps
// logsvc.Service handler calls strictly sequential, matching the
// original's single-threaded blocking receive/dispatch/reply loop,
// while still letting many clients have connections open (and blocked
// waiting on I/O) concurrently.
package server

import (
	"context"
	"errors"
	"net"

	"github.com/google/uuid"

	"github.com/opencoff/logsrv/internal/logsvc"
	"github.com/opencoff/logsrv/internal/metrics"
	"github.com/opencoff/logsrv/internal/status"
	"github.com/opencoff/logsrv/internal/wire"
)

// job is one decoded request awaiting sequential dispatch, paired with
// the channel its result should be delivered on.
type job struct {
	req    wire.Request
	who    uuid.UUID
	proc   string
	result chan status.Status
}

// Server owns the dispatch channel, the single worker goroutine that
// drains it, and the listener loop that feeds it.
type Server struct {
	svc      *logsvc.Service
	procName func(*net.UnixConn) string
	jobs     chan job
	log      logsvc.Logf
}

// New builds a Server around svc. procName resolves a connection's peer
// process name (normally adapter.PeerCredResolver.Name); queueLen sizes
// the dispatch channel's buffer.
func New(svc *logsvc.Service, procName func(*net.UnixConn) string, queueLen int, log logsvc.Logf) *Server {
	if queueLen <= 0 {
		queueLen = 64
	}
	if log == nil {
		log = nopLogf{}
	}
	s := &Server{
		svc:      svc,
		procName: procName,
		jobs:     make(chan job, queueLen),
		log:      log,
	}
	return s
}

type nopLogf struct{}

func (nopLogf) Infof(string, ...interface{})  {}
func (nopLogf) Warnf(string, ...interface{})  {}
func (nopLogf) Debugf(string, ...interface{}) {}

// Serve runs the dispatch worker and the accept loop over ln until ctx
// is canceled or ln.Accept fails permanently. It always returns a
// non-nil error; a clean shutdown via ctx returns ctx.Err().
func (s *Server) Serve(ctx context.Context, ln *net.UnixListener) error {
	go s.dispatchLoop()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.AcceptUnix()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// dispatchLoop is the single consumer of s.jobs, guaranteeing every
// logsvc.Service call happens on one goroutine at a time.
func (s *Server) dispatchLoop() {
	for j := range s.jobs {
		st := s.dispatch(j)
		metrics.ObserveRequest(j.req.Op, st.String())
		j.result <- st
	}
}

func (s *Server) dispatch(j job) status.Status {
	req := j.req
	switch req.Op {
	case wire.OpInitialize:
		return s.svc.Initialize()
	case wire.OpStartLog:
		return s.svc.StartLog(req.Logger, j.who)
	case wire.OpCloseLog:
		return s.svc.CloseLog(req.Logger, j.who)
	case wire.OpWriteLog:
		return s.svc.WriteLog(req.Logger, req.Severity, req.Message, j.who, j.proc)
	case wire.OpSetSeverity:
		return s.svc.SetSeverity(req.Logger, req.Severity)
	case wire.OpClearLog:
		return s.svc.ClearLog(req.Logger)
	case wire.OpClearAll:
		return s.svc.ClearAll()
	default:
		s.log.Warnf("unknown opcode %d", uint8(req.Op))
		return status.ErrInvalid
	}
}

// handleConn assigns the connection a stable endpoint identity (standing
// in for the kernel's per-process endpoint_t) and serially services
// requests on it until the client disconnects. Requests are not
// pipelined: one request, one reply, per the original's synchronous IPC
// contract.
func (s *Server) handleConn(conn *net.UnixConn) {
	defer conn.Close()

	who := uuid.New()
	proc := "unknown-pid"
	if s.procName != nil {
		proc = s.procName(conn)
	}

	for {
		req, err := wire.ReadRequest(conn)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Debugf("connection from %s (%s) closed: %v", who, proc, err)
			}
			return
		}

		result := make(chan status.Status, 1)
		s.jobs <- job{req: req, who: who, proc: proc, result: result}
		st := <-result

		if err := wire.WriteReply(conn, wire.Reply{Status: st}); err != nil {
			s.log.Warnf("failed writing reply to %s (%s): %v", who, proc, err)
			return
		}
	}
}
