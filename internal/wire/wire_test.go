package wire

import (
	"bytes"
	"testing"

	"github.com/opencoff/logsrv/internal/severity"
	"github.com/opencoff/logsrv/internal/status"
)

func TestRequestRoundTrip(t *testing.T) {
	req := Request{
		Op:       OpWriteLog,
		Logger:   "audit",
		Severity: severity.Warn,
		Message:  []byte("disk full"),
	}
	var buf bytes.Buffer
	if err := WriteRequest(&buf, req); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	got, err := ReadRequest(&buf)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if got.Op != req.Op || got.Logger != req.Logger || got.Severity != req.Severity || string(got.Message) != string(req.Message) {
		t.Fatalf("got %+v, want %+v", got, req)
	}
}

func TestRequestRoundTripEmptyFields(t *testing.T) {
	req := Request{Op: OpInitialize}
	var buf bytes.Buffer
	if err := WriteRequest(&buf, req); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	got, err := ReadRequest(&buf)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if got.Op != OpInitialize || got.Logger != "" || len(got.Message) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestReplyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReply(&buf, Reply{Status: status.ErrLoggerOpen}); err != nil {
		t.Fatalf("WriteReply: %v", err)
	}
	got, err := ReadReply(&buf)
	if err != nil {
		t.Fatalf("ReadReply: %v", err)
	}
	if got.Status != status.ErrLoggerOpen {
		t.Fatalf("got %v, want ErrLoggerOpen", got.Status)
	}
}

func TestReadRequestRejectsOversizedMessage(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(OpWriteLog))
	buf.Write([]byte{0, 0}) // empty logger name
	buf.WriteByte(byte(severity.Trace))
	buf.Write([]byte{0x7f, 0xff, 0xff, 0xff}) // huge length
	if _, err := ReadRequest(&buf); err == nil {
		t.Fatalf("expected error for oversized message length")
	}
}

func TestOpString(t *testing.T) {
	if OpClearAll.String() != "CLEAR_ALL" {
		t.Fatalf("got %q", OpClearAll.String())
	}
}
