// Package severity defines the per-message log level used by the domain
// logger channels (distinct from the server's own go-logger priority
// hierarchy). It mirrors ls_severity_level_t / MINIX_LS_LEVEL_* from
// minix/ls.h: four levels, trace being the least severe.
package severity

// Severity is the minimum-level gate applied to WriteLog calls, and the
// level a message itself carries.
type Severity int

const (
	Trace Severity = iota
	Debug
	Info
	Warn
)

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool {
	return s >= Trace && s <= Warn
}

func (s Severity) String() string {
	switch s {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	default:
		return "invalid"
	}
}

// Parse maps a config-file severity token (case-sensitive, as accepted by
// the config grammar) to a Severity.
func Parse(tok string) (Severity, bool) {
	switch tok {
	case "trace":
		return Trace, true
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn":
		return Warn, true
	default:
		return 0, false
	}
}
