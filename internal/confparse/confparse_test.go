package confparse

import (
	"strings"
	"testing"

	"github.com/opencoff/logsrv/internal/registry"
	"github.com/opencoff/logsrv/internal/severity"
)

func TestParseSingleLogger(t *testing.T) {
	const cfg = `logger audit {
destination = file
severity = info
format = %t %m
filename = /var/log/audit.log
append = true
}
`
	defs, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d loggers, want 1", len(defs))
	}
	d := defs[0]
	if d.Name != "audit" {
		t.Errorf("Name = %q, want audit", d.Name)
	}
	if d.Destination != registry.DestFile {
		t.Errorf("Destination = %v, want DestFile", d.Destination)
	}
	if d.Severity != severity.Info {
		t.Errorf("Severity = %v, want Info", d.Severity)
	}
	if d.Format != "%t %m" {
		t.Errorf("Format = %q, want %%t %%m", d.Format)
	}
	if d.Filename != "/var/log/audit.log" {
		t.Errorf("Filename = %q", d.Filename)
	}
	if !d.Append {
		t.Errorf("Append = false, want true")
	}
}

func TestParseMultipleLoggers(t *testing.T) {
	const cfg = `logger a {
destination = stdout
format = %m
}
logger b {
destination = stderr
format = %m
}
`
	defs, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "a" || defs[1].Name != "b" {
		t.Fatalf("got %+v", defs)
	}
}

func TestParseDefaultsAppendFalseSeverityTrace(t *testing.T) {
	const cfg = `logger a {
destination = file
filename = /tmp/a.log
format = %m
}
`
	defs, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := defs[0]
	if d.Append {
		t.Errorf("Append defaulted to true, want false")
	}
	if d.Severity != severity.Trace {
		t.Errorf("Severity defaulted to %v, want Trace", d.Severity)
	}
}

func TestParseMissingFormatIsInvalid(t *testing.T) {
	const cfg = `logger a {
destination = stdout
}
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatalf("expected validation error for missing format")
	}
}

func TestParseMissingDestinationIsInvalid(t *testing.T) {
	const cfg = `logger a {
format = %m
}
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatalf("expected validation error for missing destination")
	}
}

func TestParseFilenameWithoutFileDestinationIsInvalid(t *testing.T) {
	const cfg = `logger a {
destination = stdout
filename = /tmp/a.log
format = %m
}
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatalf("expected validation error for filename on non-file destination")
	}
}

func TestParseFileDestinationWithoutFilenameIsInvalid(t *testing.T) {
	const cfg = `logger a {
destination = file
format = %m
}
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatalf("expected validation error for file destination without filename")
	}
}

func TestParseSyntaxErrorReportsPosition(t *testing.T) {
	const cfg = `xogger a {
}
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatalf("expected syntax error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if pe.Line != 1 {
		t.Errorf("Line = %d, want 1", pe.Line)
	}
}

func TestParseInvalidDestinationValue(t *testing.T) {
	const cfg = `logger a {
destination = nowhere
format = %m
}
`
	_, err := Parse(strings.NewReader(cfg))
	if err == nil {
		t.Fatalf("expected error for invalid destination value")
	}
}

func TestParseEmptyInputYieldsNoLoggers(t *testing.T) {
	defs, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("got %d loggers, want 0", len(defs))
	}
}

func TestParseIgnoresBlankLinesBetweenOptions(t *testing.T) {
	const cfg = "logger a {\n\ndestination = stdout\n\nformat = %m\n\n}\n"
	defs, err := Parse(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d loggers, want 1", len(defs))
	}
}

func TestParseIterYieldsIncrementally(t *testing.T) {
	const cfg = `logger a {
destination = stdout
format = %m
}
logger b {
destination = stderr
format = %m
}
`
	next := ParseIter(strings.NewReader(cfg))
	var names []string
	for {
		d, ok, err := next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		names = append(names, d.Name)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("got %v", names)
	}
}
