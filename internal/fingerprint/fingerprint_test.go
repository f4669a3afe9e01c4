package fingerprint

import "testing"

func TestComputeIsDeterministic(t *testing.T) {
	a := Compute(4293918721, 2960092488, 127, 11)
	b := Compute(4293918721, 2960092488, 127, 11)
	if !a.Equal(b) {
		t.Errorf("Compute is not deterministic: %s != %s", a, b)
	}
}

func TestComputeDiffersOnAnyParameter(t *testing.T) {
	base := Compute(4293918721, 2960092488, 127, 11)
	variants := []Fingerprint{
		Compute(4293918721, 2960092488, 127, 12),  // seed differs
		Compute(4293918721, 2960092488, 63, 11),   // length differs
		Compute(4293918721, 2960092488+1, 127, 11), // generator differs
		Compute(4293918721+2, 2960092488, 127, 11), // prime differs
	}
	for i, v := range variants {
		if base.Equal(v) {
			t.Errorf("variant %d unexpectedly matched base fingerprint", i)
		}
	}
}

func TestStringIsStable(t *testing.T) {
	a := Compute(97, 31, 4, 1)
	if a.String() == "" {
		t.Errorf("String() returned empty")
	}
	if a.String() != a.String() {
		t.Errorf("String() is not stable across calls")
	}
}
