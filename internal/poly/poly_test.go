package poly

import (
	"reflect"
	"testing"

	"github.com/rawblock/privagg/internal/field"
)

func TestLagrangeBasis(t *testing.T) {
	const p = 37
	const omega = 31
	xs := []uint64{
		field.Pow(omega, 0, p),
		field.Pow(omega, 1, p),
		field.Pow(omega, 2, p),
		field.Pow(omega, 3, p),
	}
	const r = 11

	want := []uint64{33, 25, 28, 26}
	for j, w := range want {
		if got := LagrangeBasis(xs, p, r, j); got != w {
			t.Errorf("LagrangeBasis(xs,p,%d,%d) = %d, want %d", r, j, got, w)
		}
	}
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ n, want int }{
		{1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {127, 128},
	}
	for _, tt := range tests {
		if got := NextPow2(tt.n); got != tt.want {
			t.Errorf("NextPow2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestInterpolateSubgroupRoundTrip(t *testing.T) {
	const p = 4293918721
	// 2960092488 has order 128 mod p; its 32nd power is a primitive 4th root
	// of unity, as a 4-point interpolation requires.
	omega := field.Pow(2960092488, 32, p)

	n := 4
	values := []uint64{5, 9, 1, 20}
	coeffs := InterpolateSubgroup(values, p, omega)

	for i, want := range values {
		x := field.Pow(omega, uint64(i), p)
		if got := EvalHorner(coeffs, x, p); got != want {
			t.Errorf("EvalHorner at omega^%d = %d, want %d", i, got, want)
		}
	}
	_ = n
}

func TestMulConvolution(t *testing.T) {
	const p = 97
	a := []uint64{1, 2} // 1 + 2x
	b := []uint64{3, 4} // 3 + 4x
	// (1+2x)(3+4x) = 3 + 10x + 8x^2
	got := Mul(a, b, p)
	want := []uint64{3, 10, 8}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Mul = %v, want %v", got, want)
	}
}
