package render

import (
	"testing"
	"time"

	"github.com/opencoff/logsrv/internal/severity"
)

var refTime = time.Date(2026, 7, 29, 13, 4, 5, 0, time.UTC)

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	dst := make([]byte, 256)
	n := Render(dst, "%l|%t|%n|%m|%%", severity.Warn, refTime, "initd", []byte("boom"))
	got := string(dst[:n])
	want := "warn|2026-07-29 13:04:05|initd|boom|%\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderLiteralTextPassesThrough(t *testing.T) {
	dst := make([]byte, 64)
	n := Render(dst, "plain text", severity.Trace, refTime, "p", nil)
	if string(dst[:n]) != "plain text\n" {
		t.Fatalf("got %q", dst[:n])
	}
}

func TestRenderUnknownEscapeIsLiteral(t *testing.T) {
	dst := make([]byte, 64)
	n := Render(dst, "%z", severity.Trace, refTime, "p", nil)
	if string(dst[:n]) != "%z\n" {
		t.Fatalf("got %q", dst[:n])
	}
}

func TestRenderTrailingPercentDropped(t *testing.T) {
	dst := make([]byte, 64)
	n := Render(dst, "abc%", severity.Trace, refTime, "p", nil)
	if string(dst[:n]) != "abc\n" {
		t.Fatalf("got %q", dst[:n])
	}
}

func TestRenderTruncatesWithoutError(t *testing.T) {
	dst := make([]byte, 5)
	n := Render(dst, "%m", severity.Trace, refTime, "p", []byte("0123456789"))
	if n != 5 {
		t.Fatalf("n = %d, want 5", n)
	}
	if string(dst) != "01234" {
		t.Fatalf("got %q", dst)
	}
}

func TestRenderMessageMayContainPercent(t *testing.T) {
	dst := make([]byte, 64)
	n := Render(dst, "%m", severity.Trace, refTime, "p", []byte("100%% done"))
	if string(dst[:n]) != "100%% done\n" {
		t.Fatalf("got %q", dst[:n])
	}
}
