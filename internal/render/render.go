// Package render implements the logger format-template substitution:
// %l severity, %t timestamp, %n process name, %m message, %% literal
// percent. It is a direct port of print_log's PUTC/PUTS buffer-bounded
// writer: running out of room truncates the line rather than erroring.
package render

import (
	"time"

	"github.com/opencoff/logsrv/internal/severity"
)

const timeLayout = "2006-01-02 15:04:05"

// Render expands tmpl into dst, substituting the placeholders below and
// appending a trailing newline. It returns the number of bytes written,
// which is at most len(dst); if dst fills up mid-expansion, Render stops
// and returns what it managed to write — this is truncation, not an
// error, matching the original's behavior when a log line overruns its
// fixed-size buffer.
//
//	%l   severity name (trace/debug/info/warn)
//	%t   ts formatted as "2006-01-02 15:04:05"
//	%n   procName
//	%m   msg, copied verbatim (may itself contain '%')
//	%%   a literal '%'
//	%X   (any other X) passed through as literal "%X"
func Render(dst []byte, tmpl string, sev severity.Severity, ts time.Time, procName string, msg []byte) int {
	n := 0
	put := func(b byte) bool {
		if n >= len(dst) {
			return false
		}
		dst[n] = b
		n++
		return true
	}
	puts := func(s string) bool {
		for i := 0; i < len(s); i++ {
			if !put(s[i]) {
				return false
			}
		}
		return true
	}

	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c != '%' {
			if !put(c) {
				return n
			}
			i++
			continue
		}

		i++
		if i >= len(tmpl) {
			// trailing bare '%' with nothing after it: drop it, matching
			// the original returning immediately on format-string end.
			break
		}

		switch tmpl[i] {
		case 'l':
			if !puts(sev.String()) {
				return n
			}
		case 't':
			if !puts(ts.Format(timeLayout)) {
				return n
			}
		case 'n':
			if !puts(procName) {
				return n
			}
		case 'm':
			for _, b := range msg {
				if !put(b) {
					return n
				}
			}
		case '%':
			if !put('%') {
				return n
			}
		default:
			if !put('%') {
				return n
			}
			if !put(tmpl[i]) {
				return n
			}
		}
		i++
	}

	put('\n')
	return n
}
