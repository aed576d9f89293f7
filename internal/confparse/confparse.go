// Package confparse implements the logger config-file grammar: a
// sequence of
//
//	logger NAME {
//	    destination = file|stdout|stderr
//	    severity = trace|debug|info|warn
//	    format = ...
//	    filename = ...
//	    append = true|false
//	}
//
// blocks. It is a direct port of the original config-parse.c state
// machine: a byte-at-a-time automaton that tracks line/column for error
// reporting instead of building an AST and re-walking it.
package confparse

import (
	"fmt"
	"io"

	"github.com/opencoff/logsrv/internal/confio"
	"github.com/opencoff/logsrv/internal/registry"
	"github.com/opencoff/logsrv/internal/severity"
)

// ParseError reports a syntax error at a specific line/column, 1-indexed
// as in the original parser.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config parse error at line %d, char %d: %s", e.Line, e.Col, e.Msg)
}

const maxValueLen = 2048

type stateKind int

const (
	stLoggerKeyword stateKind = iota
	stLoggerName
	stOpenBrace
	stOpenBraceNewline
	stOptionName
	stOptionEquals
	stOptionValue
)

type parser struct {
	kind        stateKind
	line, col   int
	afterNL     bool
	consumeOff  int
	curValue    []byte
	optionName  string
	didFilename bool
	didAppend   bool
	didType     bool
	didFormat   bool
	cur         registry.Definition
}

func newParser() *parser {
	return &parser{kind: stLoggerKeyword, line: 1}
}

func isWhite(ch byte) bool { return ch == ' ' || ch == '\t' }

func isAllowedInLoggerName(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '_'
}

func isAllowedInOptionName(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

func translate(ch byte) string {
	switch ch {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	default:
		return string(ch)
	}
}

func (p *parser) whitespaceInvariant() bool {
	switch {
	case p.kind == stLoggerName && len(p.curValue) > 0:
		return false
	case p.kind == stLoggerKeyword && p.consumeOff > 0:
		return false
	case p.kind == stOptionName && len(p.curValue) > 0:
		return false
	case p.kind == stOptionValue && len(p.curValue) > 0:
		return false
	default:
		return true
	}
}

func (p *parser) newlineInvariant() bool {
	switch {
	case p.kind == stOpenBrace && p.consumeOff == 0:
		return true
	case p.kind == stLoggerKeyword && p.consumeOff == 0:
		return true
	case p.kind == stOptionName && len(p.curValue) == 0:
		return true
	default:
		return false
	}
}

// consumeLiteral advances through a fixed string (e.g. "logger", "{",
// "\n", "=") one byte at a time, transitioning to next once fully
// matched.
func (p *parser) consumeLiteral(literal string, ch byte, next stateKind) error {
	if literal[p.consumeOff] != ch {
		return fmt.Errorf("unexpected character %q while consuming %q", translate(ch), literal)
	}
	p.consumeOff++
	if p.consumeOff >= len(literal) {
		p.kind = next
		p.consumeOff = 0
		p.curValue = p.curValue[:0]
	}
	return nil
}

// result of advancing the state machine by one byte.
type result int

const (
	resOK result = iota
	resGotLogger
)

func (p *parser) advance(ch byte) (result, error) {
	// line/col locate ch itself; a newline moves the position to the next
	// line only once the byte after it arrives.
	if p.afterNL {
		p.line++
		p.col = 0
	}
	p.col++
	p.afterNL = ch == '\n'

	if (isWhite(ch) && p.whitespaceInvariant()) || (ch == '\n' && p.newlineInvariant()) {
		return resOK, nil
	}

	switch p.kind {
	case stLoggerKeyword:
		p.didFilename, p.didAppend, p.didType, p.didFormat = false, false, false, false
		if err := p.consumeLiteral("logger", ch, stLoggerName); err != nil {
			return resOK, err
		}
		return resOK, nil

	case stOpenBrace:
		if err := p.consumeLiteral("{", ch, stOpenBraceNewline); err != nil {
			return resOK, err
		}
		return resOK, nil

	case stOpenBraceNewline:
		if err := p.consumeLiteral("\n", ch, stOptionName); err != nil {
			return resOK, err
		}
		return resOK, nil

	case stOptionEquals:
		if err := p.consumeLiteral("=", ch, stOptionValue); err != nil {
			return resOK, err
		}
		return resOK, nil

	case stLoggerName:
		switch {
		case isAllowedInLoggerName(ch) && len(p.curValue) < registry.MaxNameLen-1:
			p.curValue = append(p.curValue, ch)
			return resOK, nil
		case isWhite(ch) || ch == '\n':
			p.cur = registry.Definition{Name: string(p.curValue)}
			p.kind = stOpenBrace
			p.consumeOff = 0
			return resOK, nil
		default:
			return resOK, fmt.Errorf("unexpected character %q in logger name", translate(ch))
		}

	case stOptionName:
		switch {
		case isAllowedInOptionName(ch) && len(p.curValue) < maxValueLen-1:
			p.curValue = append(p.curValue, ch)
			return resOK, nil
		case ch == '}':
			p.kind = stLoggerKeyword
			p.consumeOff = 0
			return resGotLogger, nil
		case (ch == '=' || isWhite(ch)) && len(p.curValue) > 0:
			if ch == '=' {
				p.kind = stOptionValue
			} else {
				p.kind = stOptionEquals
			}
			p.optionName = string(p.curValue)
			p.consumeOff = 0
			p.curValue = p.curValue[:0]
			return resOK, nil
		default:
			return resOK, fmt.Errorf("unexpected character %q in option name", translate(ch))
		}

	case stOptionValue:
		switch {
		case ch == '\n':
			p.kind = stOptionName
			val := string(p.curValue)
			p.curValue = p.curValue[:0]
			p.consumeOff = 0
			if err := p.setOption(p.optionName, val); err != nil {
				return resOK, err
			}
			return resOK, nil
		case len(p.curValue) < maxValueLen-1:
			p.curValue = append(p.curValue, ch)
			return resOK, nil
		default:
			return resOK, fmt.Errorf("unexpected character %q in option value", translate(ch))
		}
	}

	return resOK, nil
}

func (p *parser) setOption(name, value string) error {
	switch name {
	case "destination":
		p.didType = true
		switch value {
		case "file":
			p.cur.Destination = registry.DestFile
		case "stdout":
			p.cur.Destination = registry.DestStdout
		case "stderr":
			p.cur.Destination = registry.DestStderr
		default:
			return fmt.Errorf("invalid logger destination %q for logger %q (expected one of 'file', 'stdout', 'stderr')", value, p.cur.Name)
		}
	case "severity":
		sev, ok := severity.Parse(value)
		if !ok {
			return fmt.Errorf("invalid logger severity %q for logger %q (expected one of 'trace', 'debug', 'info', 'warn')", value, p.cur.Name)
		}
		p.cur.Severity = sev
	case "format":
		p.didFormat = true
		if len(value) > registry.MaxFormatLen-1 {
			return fmt.Errorf("logger format string has length %d, longer than maximum allowed (%d)", len(value), registry.MaxFormatLen-1)
		}
		p.cur.Format = value
	case "filename":
		p.didFilename = true
		if len(value) > registry.MaxFilePathLen-1 {
			return fmt.Errorf("logger destination filename has length %d, longer than maximum allowed (%d)", len(value), registry.MaxFilePathLen-1)
		}
		p.cur.Filename = value
	case "append":
		p.didAppend = true
		switch value {
		case "true":
			p.cur.Append = true
		case "false":
			p.cur.Append = false
		default:
			return fmt.Errorf("invalid append value %q for logger %q (expected 'true' or 'false')", value, p.cur.Name)
		}
	default:
		return fmt.Errorf("invalid option name %q for logger %q (expected one of 'destination', 'filename', 'severity', 'format', 'append')", name, p.cur.Name)
	}
	return nil
}

// validate mirrors is_logger_valid: format and destination are mandatory,
// filename/append only make sense for a file destination, and a file
// destination requires a filename.
func (p *parser) validate() error {
	l := p.cur
	if !p.didFormat {
		return fmt.Errorf("logger %q has no format option, but it is required", l.Name)
	}
	if !p.didType {
		return fmt.Errorf("logger %q has no destination option, but it is required", l.Name)
	}
	if p.didFilename && l.Destination != registry.DestFile {
		return fmt.Errorf("logger %q has a filename option, but its destination is not a file", l.Name)
	}
	if p.didAppend && l.Destination != registry.DestFile {
		return fmt.Errorf("logger %q has an append option, but its destination is not a file", l.Name)
	}
	if l.Destination == registry.DestFile && !p.didFilename {
		return fmt.Errorf("logger %q has no filename option, but its destination is a file", l.Name)
	}
	return nil
}

// ParseIter returns a closure that yields one logger Definition per call,
// driving the state machine byte-at-a-time without building the whole
// result slice up front. The closure returns (def, true, nil) for each
// logger found, (_, false, nil) at clean end of input, and (_, false,
// err) on the first syntax or validation error — after which it keeps
// returning that same error.
func ParseIter(r io.Reader) func() (registry.Definition, bool, error) {
	br := confio.New(r)
	p := newParser()
	var fatal error

	return func() (registry.Definition, bool, error) {
		if fatal != nil {
			return registry.Definition{}, false, fatal
		}
		for {
			b, ok, err := br.NextByte()
			if !ok {
				if err != io.EOF {
					fatal = err
				}
				return registry.Definition{}, false, fatal
			}

			res, perr := p.advance(b)
			if perr != nil {
				fatal = &ParseError{Line: p.line, Col: p.col, Msg: perr.Error()}
				return registry.Definition{}, false, fatal
			}
			if res == resGotLogger {
				if err := p.validate(); err != nil {
					fatal = err
					return registry.Definition{}, false, fatal
				}
				return p.cur, true, nil
			}
		}
	}
}

// Parse reads the entire config grammar from r and returns the loggers it
// declares, in declaration order. A syntax error or a failed logger
// validation aborts the parse and returns a *ParseError (syntax) or a
// plain error (validation) — no partial registry is returned.
func Parse(r io.Reader) ([]registry.Definition, error) {
	next := ParseIter(r)
	var defs []registry.Definition
	for {
		def, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return defs, nil
		}
		defs = append(defs, def)
	}
}
