package bank

import (
	"testing"
	"time"
)

func TestFieldStates(t *testing.T) {
	var unchanged Field[string]
	if unchanged.Touched() || unchanged.IsClear() {
		t.Error("zero Field must be Unchanged")
	}
	if _, ok := unchanged.Get(); ok {
		t.Error("Unchanged field must not report a value")
	}

	set := Set("value")
	if !set.Touched() || set.IsClear() {
		t.Error("Set field state wrong")
	}
	if v, ok := set.Get(); !ok || v != "value" {
		t.Errorf("Set(...).Get() = %q, %v", v, ok)
	}

	clear := Clear[time.Time]()
	if !clear.Touched() || !clear.IsClear() {
		t.Error("Clear field state wrong")
	}
	if _, ok := clear.Get(); ok {
		t.Error("Clear field must not report a value")
	}

	// Set("") is distinct from both Unchanged and Clear.
	empty := Set("")
	if v, ok := empty.Get(); !ok || v != "" {
		t.Error("Set(\"\") must report an empty value, not absence")
	}
}

func TestPatchIsEmpty(t *testing.T) {
	if !(Patch{}).IsEmpty() {
		t.Error("zero Patch must be empty")
	}
	if (Patch{Notes: Clear[string]()}).IsEmpty() {
		t.Error("a Clear instruction is not an empty patch")
	}
	if (Patch{Owner: Set("alice")}).IsEmpty() {
		t.Error("a Set instruction is not an empty patch")
	}
}
