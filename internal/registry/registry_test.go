package registry

import (
	"testing"

	"github.com/opencoff/logsrv/internal/severity"
)

func defs() []Definition {
	return []Definition{
		{Name: "audit", Destination: DestFile, Severity: severity.Info, Filename: "/var/log/audit.log", Format: "%m"},
		{Name: "console", Destination: DestStdout, Severity: severity.Trace, Format: "%t %m"},
	}
}

func TestNewPreservesOrder(t *testing.T) {
	r := New(defs())
	want := []string{"audit", "console"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("got %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLookupMissing(t *testing.T) {
	r := New(defs())
	if _, _, ok := r.Lookup("nope"); ok {
		t.Fatalf("expected lookup miss for unregistered name")
	}
}

func TestLookupReturnsMutableState(t *testing.T) {
	r := New(defs())
	_, st, ok := r.Lookup("audit")
	if !ok {
		t.Fatalf("expected lookup hit")
	}
	st.Open = true
	_, st2, _ := r.Lookup("audit")
	if !st2.Open {
		t.Fatalf("expected state mutation to be visible through a second lookup")
	}
}

func TestDuplicateNames(t *testing.T) {
	d := []Definition{
		{Name: "a"}, {Name: "b"}, {Name: "a"}, {Name: "a"},
	}
	dups := DuplicateNames(d)
	if len(dups) != 1 || dups[0] != "a" {
		t.Fatalf("got %v, want [a]", dups)
	}
}

func TestNewDropsLaterDuplicates(t *testing.T) {
	d := []Definition{
		{Name: "a", Format: "first"},
		{Name: "a", Format: "second"},
	}
	r := New(d)
	if r.Len() != 1 {
		t.Fatalf("got %d entries, want 1", r.Len())
	}
	def, _, _ := r.Lookup("a")
	if def.Format != "first" {
		t.Fatalf("got format %q, want first definition retained", def.Format)
	}
}

func TestEachStopsEarly(t *testing.T) {
	r := New(defs())
	var seen []string
	r.Each(func(name string, _ Definition, _ *State) bool {
		seen = append(seen, name)
		return false
	})
	if len(seen) != 1 {
		t.Fatalf("got %d calls, want 1", len(seen))
	}
}
