package prng

import "testing"

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		if av, bv := a.Uint64(), b.Uint64(); av != bv {
			t.Fatalf("draw %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	if a.Uint64() == b.Uint64() {
		t.Fatalf("first draw from different seeds collided (statistically implausible)")
	}
}

func TestFieldElemInRange(t *testing.T) {
	const p = 97
	g := New(7)
	for i := 0; i < 1000; i++ {
		v := g.FieldElem(p)
		if v >= p {
			t.Fatalf("FieldElem returned %d, out of range [0,%d)", v, p)
		}
	}
}

func TestFieldElemAvoidingNeverReturnsBad(t *testing.T) {
	const p = 11
	bad := map[uint64]bool{0: true, 1: true, 2: true}
	g := New(99)
	for i := 0; i < 200; i++ {
		v := g.FieldElemAvoiding(p, bad)
		if bad[v] {
			t.Fatalf("FieldElemAvoiding returned excluded value %d", v)
		}
	}
}

func TestFieldVecLength(t *testing.T) {
	g := New(5)
	v := g.FieldVec(12, 97)
	if len(v) != 12 {
		t.Fatalf("FieldVec length = %d, want 12", len(v))
	}
}
