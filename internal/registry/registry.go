// Package registry holds the set of loggers known to the server — their
// static configuration (Definition) and per-process runtime state
// (State) — in a slice plus a name index, so iteration order matches
// config-file declaration order even though lookup by name stays O(1).
package registry

import (
	"github.com/google/uuid"

	"github.com/opencoff/logsrv/internal/severity"
)

// Destination is where a logger's rendered output goes.
type Destination int

const (
	DestFile Destination = iota
	DestStdout
	DestStderr
)

func (d Destination) String() string {
	switch d {
	case DestFile:
		return "file"
	case DestStdout:
		return "stdout"
	case DestStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

const (
	MaxNameLen     = 32
	MaxFilePathLen = 64
	MaxFormatLen   = 128
)

// Definition is a logger's static configuration, as declared by a single
// `logger NAME { ... }` block in the config file. It never changes once
// parsed; re-running initialize replaces the whole set.
type Definition struct {
	Name        string
	Destination Destination
	Severity    severity.Severity
	Filename    string // only meaningful when Destination == DestFile
	Format      string
	Append      bool // only meaningful when Destination == DestFile
}

// State is the runtime, per-open state of a single logger. A newly built
// Registry starts every logger at the zero value (closed, no owner).
// Closing a logger clears Open, OpenedBy and the file handle but keeps
// Severity; clearing a logger does not touch its State.
type State struct {
	Open       bool
	Severity   severity.Severity
	OpenedBy   uuid.UUID
	OpenedName string
	fd         FileHandle
}

// FileHandle is the minimal file-like surface State needs to hold an open
// backing file; satisfied by *os.File and test doubles alike.
type FileHandle interface {
	Write(p []byte) (int, error)
	Close() error
	Truncate(size int64) error
}

// File returns the currently open backing file, or nil if none.
func (s *State) File() FileHandle { return s.fd }

// SetFile installs the backing file for an open logger.
func (s *State) SetFile(f FileHandle) { s.fd = f }

// entry pairs a Definition with its live State.
type entry struct {
	def   Definition
	state State
}

// Registry is an ordered collection of loggers, indexed by name.
// Iteration (Names, Each) always walks in declaration order.
type Registry struct {
	order []string
	byName map[string]*entry
}

// New builds a Registry from defs, preserving their order. If defs
// contains duplicate names, the later ones are silently dropped — callers
// that must reject a config with collisions (logsvc.Initialize does)
// should call DuplicateNames first and refuse to proceed if it reports
// any.
func New(defs []Definition) *Registry {
	r := &Registry{
		byName: make(map[string]*entry, len(defs)),
	}
	for _, d := range defs {
		if _, dup := r.byName[d.Name]; dup {
			continue
		}
		r.order = append(r.order, d.Name)
		r.byName[d.Name] = &entry{def: d}
	}
	return r
}

// DuplicateNames returns the names in defs that appear more than once, in
// first-duplicate-seen order.
func DuplicateNames(defs []Definition) []string {
	seen := make(map[string]int, len(defs))
	var dups []string
	for _, d := range defs {
		seen[d.Name]++
		if seen[d.Name] == 2 {
			dups = append(dups, d.Name)
		}
	}
	return dups
}

// Lookup returns the Definition and a pointer to the mutable State for
// name, or ok == false if no such logger is registered.
func (r *Registry) Lookup(name string) (Definition, *State, bool) {
	e, ok := r.byName[name]
	if !ok {
		return Definition{}, nil, false
	}
	return e.def, &e.state, true
}

// Names returns the registered logger names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports how many loggers are registered.
func (r *Registry) Len() int { return len(r.order) }

// Each calls fn for every logger in declaration order, stopping early if
// fn returns false.
func (r *Registry) Each(fn func(name string, def Definition, state *State) bool) {
	for _, name := range r.order {
		e := r.byName[name]
		if !fn(name, e.def, &e.state) {
			return
		}
	}
}
