package circuit

import (
	"reflect"
	"testing"
)

func TestBitTestEval(t *testing.T) {
	const p = 65537
	c := BitTest(p)

	tests := []struct {
		name string
		x    uint64
		want uint64
	}{
		{"zero is a valid bit", 0, 0},
		{"one is a valid bit", 1, 0},
		{"two is not a valid bit", 2, 2}, // 2*(2-1) = 2, nonzero
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Eval([]uint64{tt.x})
			if tt.x == 2 {
				if got[0] == 0 {
					t.Errorf("Eval([2]) = 0, want nonzero")
				}
				return
			}
			if !reflect.DeepEqual(got, []uint64{tt.want}) {
				t.Errorf("Eval([%d]) = %v, want [%d]", tt.x, got, tt.want)
			}
		})
	}
}

func TestBitTestWireVals(t *testing.T) {
	const p = 65537
	c := BitTest(p)

	outs, us, vs := c.WireVals([]uint64{0})
	if !reflect.DeepEqual(outs, []uint64{0}) {
		t.Errorf("outs = %v, want [0]", outs)
	}
	if !reflect.DeepEqual(us, []uint64{0}) || !reflect.DeepEqual(vs, []uint64{p - 1}) {
		t.Errorf("us,vs = %v,%v, want [0],[%d]", us, vs, p-1)
	}

	outs, us, vs = c.WireVals([]uint64{1})
	if !reflect.DeepEqual(outs, []uint64{0}) {
		t.Errorf("outs = %v, want [0]", outs)
	}
	if !reflect.DeepEqual(us, []uint64{1}) || !reflect.DeepEqual(vs, []uint64{0}) {
		t.Errorf("us,vs = %v,%v, want [1],[0]", us, vs)
	}
}

func TestBitvectorTestPerComponent(t *testing.T) {
	const p = 65537
	c := BitvectorTest(p, 3)
	out := c.Eval([]uint64{1, 0, 2})
	if out[0] != 0 || out[1] != 0 {
		t.Errorf("valid bits should evaluate to 0, got %v", out)
	}
	if out[2] == 0 {
		t.Errorf("invalid bit 2 should evaluate to nonzero")
	}
	if c.CountMuls() != 3 {
		t.Errorf("CountMuls() = %d, want 3", c.CountMuls())
	}
}
