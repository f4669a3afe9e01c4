package secretshare

import (
	"reflect"
	"testing"

	"github.com/rawblock/privagg/internal/prng"
)

func TestGenReconstructRoundTrip(t *testing.T) {
	const p = 4293918721
	g := prng.New(123)
	for _, x := range []uint64{0, 1, p - 1, 42} {
		s0, s1 := Gen(x, p, g)
		if got := Reconstruct(s0, s1, p); got != x {
			t.Errorf("Reconstruct(Gen(%d)) = %d, want %d", x, got, x)
		}
	}
}

func TestGenVecReconstructVecRoundTrip(t *testing.T) {
	const p = 4293918721
	g := prng.New(7)
	xs := []uint64{1, 0, 1, 1}
	s0, s1 := GenVec(xs, p, g)
	got := ReconstructVec(s0, s1, p)
	if !reflect.DeepEqual(got, xs) {
		t.Errorf("ReconstructVec(GenVec(xs)) = %v, want %v", got, xs)
	}
}

func TestAddVec(t *testing.T) {
	const p = 97
	acc := []uint64{1, 2, 3}
	x := []uint64{10, 20, 30}
	got := AddVec(acc, x, p)
	want := []uint64{11, 22, 33}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AddVec = %v, want %v", got, want)
	}
}
