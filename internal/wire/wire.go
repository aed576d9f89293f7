// Package wire defines the length-prefixed binary frame that carries
// logger requests and replies over the Unix domain socket transport
// (the concrete stand-in for the original's synchronous kernel IPC
// message). Every request gets exactly one reply; there is no
// pipelining.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opencoff/logsrv/internal/severity"
	"github.com/opencoff/logsrv/internal/status"
)

// Op identifies the requested operation, one per original do_* handler.
type Op uint8

const (
	OpInitialize Op = iota
	OpStartLog
	OpCloseLog
	OpWriteLog
	OpSetSeverity
	OpClearLog
	OpClearAll
)

func (op Op) String() string {
	switch op {
	case OpInitialize:
		return "INITIALIZE"
	case OpStartLog:
		return "START_LOG"
	case OpCloseLog:
		return "CLOSE_LOG"
	case OpWriteLog:
		return "WRITE_LOG"
	case OpSetSeverity:
		return "SET_SEVERITY"
	case OpClearLog:
		return "CLEAR_LOG"
	case OpClearAll:
		return "CLEAR_ALL"
	default:
		return fmt.Sprintf("OP(%d)", uint8(op))
	}
}

// maxFrameLen bounds a single payload, guarding the reader against a
// hostile or corrupt length prefix forcing an unbounded allocation.
const maxFrameLen = 1 << 20

// Request is one decoded client request. Not every field is meaningful
// for every Op: StartLog/CloseLog/ClearLog use Logger; SetSeverity uses
// Logger and Severity; WriteLog uses Logger, Severity and Message;
// Initialize/ClearAll use none of them.
type Request struct {
	Op       Op
	Logger   string
	Severity severity.Severity
	Message  []byte
}

// Reply is one encoded server reply: a single status code and no other
// payload.
type Reply struct {
	Status status.Status
}

// WriteRequest encodes req onto w as: op(1) | loggerLen(2) | logger |
// severity(1) | msgLen(4) | message.
func WriteRequest(w io.Writer, req Request) error {
	if len(req.Logger) > 0xffff {
		return fmt.Errorf("wire: logger name too long (%d bytes)", len(req.Logger))
	}
	if len(req.Message) > maxFrameLen {
		return fmt.Errorf("wire: message too long (%d bytes)", len(req.Message))
	}

	buf := make([]byte, 0, 1+2+len(req.Logger)+1+4+len(req.Message))
	buf = append(buf, byte(req.Op))
	buf = appendUint16(buf, uint16(len(req.Logger)))
	buf = append(buf, req.Logger...)
	buf = append(buf, byte(req.Severity))
	buf = appendUint32(buf, uint32(len(req.Message)))
	buf = append(buf, req.Message...)

	_, err := w.Write(buf)
	return err
}

// ReadRequest decodes one Request from r, in the format WriteRequest
// produces.
func ReadRequest(r io.Reader) (Request, error) {
	var hdr [1 + 2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Request{}, err
	}
	op := Op(hdr[0])
	nameLen := binary.BigEndian.Uint16(hdr[1:3])

	name := make([]byte, nameLen)
	if nameLen > 0 {
		if _, err := io.ReadFull(r, name); err != nil {
			return Request{}, err
		}
	}

	var rest [1 + 4]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return Request{}, err
	}
	sev := severity.Severity(rest[0])
	msgLen := binary.BigEndian.Uint32(rest[1:5])
	if msgLen > maxFrameLen {
		return Request{}, fmt.Errorf("wire: message length %d exceeds maximum %d", msgLen, maxFrameLen)
	}

	var msg []byte
	if msgLen > 0 {
		msg = make([]byte, msgLen)
		if _, err := io.ReadFull(r, msg); err != nil {
			return Request{}, err
		}
	}

	return Request{Op: op, Logger: string(name), Severity: sev, Message: msg}, nil
}

// WriteReply encodes rep onto w as a single status byte.
func WriteReply(w io.Writer, rep Reply) error {
	_, err := w.Write([]byte{byte(rep.Status)})
	return err
}

// ReadReply decodes one Reply from r.
func ReadReply(r io.Reader) (Reply, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Reply{}, err
	}
	return Reply{Status: status.Status(b[0])}, nil
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
