package devnet

import "testing"

func TestIsDumpableMatchesAllowList(t *testing.T) {
	e := newTestEngine(t)
	for _, m := range e.DumpableMethods() {
		if !e.IsDumpable(m) {
			t.Fatalf("%q is in DumpableMethods but IsDumpable rejects it", m)
		}
	}
	if e.IsDumpable(DumpableMethod("postmanFlush")) {
		t.Fatalf("IsDumpable accepted postmanFlush, which is deliberately excluded")
	}
}

func TestDumpableMethodsReturnsACopy(t *testing.T) {
	e := newTestEngine(t)
	out := e.DumpableMethods()
	out[0] = "tampered"
	if e.DumpableMethods()[0] == "tampered" {
		t.Fatalf("DumpableMethods exposed its internal slice instead of a copy")
	}
}
