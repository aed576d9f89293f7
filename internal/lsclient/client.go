// Package lsclient is the client-side wrapper around the wire protocol:
// one method per request Op, matching minix_ls.c's minix_ls_* wrappers.
// Every call opens no new connection — callers share a single *Client
// across calls the way minix_ls.c shares the LS_PROC_NR endpoint.
package lsclient

import (
	"fmt"
	"net"
	"strings"

	"github.com/opencoff/logsrv/internal/registry"
	"github.com/opencoff/logsrv/internal/severity"
	"github.com/opencoff/logsrv/internal/status"
	"github.com/opencoff/logsrv/internal/wire"
)

// maxLoggerNameLen mirrors LS_IPC_LOGGER_MAX_NAME_LEN's usable length
// (registry.MaxNameLen minus the NUL the original reserves).
const maxLoggerNameLen = registry.MaxNameLen - 1

// Client issues requests over a single, already-connected Unix socket
// and waits for the matching reply. Not safe for concurrent use by
// multiple goroutines without external serialization, matching the
// original's one-request-in-flight IPC contract.
type Client struct {
	conn *net.UnixConn
}

// Dial connects to the server's socket at path.
func Dial(path string) (*Client, error) {
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) call(req wire.Request) (status.Status, error) {
	if len(req.Logger) > maxLoggerNameLen {
		return 0, fmt.Errorf("lsclient: logger name %q too long", req.Logger)
	}
	if err := wire.WriteRequest(c.conn, req); err != nil {
		return 0, err
	}
	rep, err := wire.ReadReply(c.conn)
	if err != nil {
		return 0, err
	}
	return rep.Status, nil
}

// Initialize re-parses the server's config file.
func (c *Client) Initialize() (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpInitialize})
}

// StartLog opens logger for this client's connection identity.
func (c *Client) StartLog(logger string) (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpStartLog, Logger: logger})
}

// CloseLog closes logger, provided this client opened it.
func (c *Client) CloseLog(logger string) (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpCloseLog, Logger: logger})
}

// WriteLog writes msg to logger at the given severity.
func (c *Client) WriteLog(logger string, sev severity.Severity, msg []byte) (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpWriteLog, Logger: logger, Severity: sev, Message: msg})
}

// SetSeverity sets logger's runtime severity threshold.
func (c *Client) SetSeverity(logger string, sev severity.Severity) (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpSetSeverity, Logger: logger, Severity: sev})
}

// ClearLog truncates a single logger.
func (c *Client) ClearLog(logger string) (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpClearLog, Logger: logger})
}

// ClearAll truncates every registered logger.
func (c *Client) ClearAll() (status.Status, error) {
	return c.call(wire.Request{Op: wire.OpClearAll})
}

// ClearList clears the loggers named in a comma-separated list, exactly
// as minix_ls_clear_logs does: an empty or all-whitespace list means
// "clear everything" (ClearAll); otherwise each name is cleared in turn,
// every one is attempted regardless of earlier failures, and the last
// non-OK status observed is what's returned — matching the original's
// "ret = ret_logger" accumulator that never breaks out of the loop.
func ClearList(c *Client, loggers string) (status.Status, error) {
	if strings.TrimSpace(loggers) == "" {
		return c.ClearAll()
	}

	names := strings.Split(loggers, ",")
	result := status.OK
	for _, name := range names {
		if len(name) > maxLoggerNameLen {
			return 0, fmt.Errorf("lsclient: logger name %q too long", name)
		}
		st, err := c.ClearLog(name)
		if err != nil {
			return 0, err
		}
		if st != status.OK {
			result = st
		}
	}
	return result, nil
}
