// Package circuit implements the arithmetic-gate tree predicate the FLPCP
// layer proves satisfaction of: tagged Const/Input/Add/Mul nodes, evaluated
// and traversed in a fixed, deterministic left-to-right post order so the
// prover and verifier collect identical wire-value sequences.
package circuit

import "github.com/rawblock/privagg/internal/field"

// Kind tags a Gate node. Go has no sum types, so this follows the tagged
// variant node shape, equivalent to a recursive algebraic enum.
type Kind int

const (
	Const Kind = iota
	Input
	Add
	Mul
)

// Gate is one node of a gate tree, owned by its parent.
type Gate struct {
	Kind  Kind
	Val   uint64 // valid when Kind == Const
	Var   int    // valid when Kind == Input
	Left  *Gate  // valid when Kind == Add or Mul
	Right *Gate  // valid when Kind == Add or Mul
}

// ConstGate builds a constant leaf.
func ConstGate(val uint64) *Gate { return &Gate{Kind: Const, Val: val} }

// InputGate builds a leaf referencing inputs[v].
func InputGate(v int) *Gate { return &Gate{Kind: Input, Var: v} }

// AddGate builds an addition node.
func AddGate(l, r *Gate) *Gate { return &Gate{Kind: Add, Left: l, Right: r} }

// MulGate builds a multiplication node.
func MulGate(l, r *Gate) *Gate { return &Gate{Kind: Mul, Left: l, Right: r} }

// Eval evaluates the gate over inputs, reducing every intermediate result
// mod p.
func (g *Gate) Eval(p uint64, inputs []uint64) uint64 {
	switch g.Kind {
	case Const:
		return g.Val % p
	case Input:
		return inputs[g.Var] % p
	case Add:
		return field.Add(g.Left.Eval(p, inputs), g.Right.Eval(p, inputs), p)
	case Mul:
		return field.Mul(g.Left.Eval(p, inputs), g.Right.Eval(p, inputs), p)
	default:
		panic("circuit: unknown gate kind")
	}
}

// WireVals evaluates g and, for every multiplication gate encountered in a
// depth-first left-first traversal, appends the left operand's value to us
// and the right operand's value to vs. The append order is the wire contract
// between prover and verifier: it must be identical every time for the same
// (gate, inputs).
func (g *Gate) WireVals(p uint64, inputs []uint64, us, vs *[]uint64) uint64 {
	switch g.Kind {
	case Const:
		return g.Val % p
	case Input:
		return inputs[g.Var] % p
	case Add:
		l := g.Left.WireVals(p, inputs, us, vs)
		r := g.Right.WireVals(p, inputs, us, vs)
		return field.Add(l, r, p)
	case Mul:
		l := g.Left.WireVals(p, inputs, us, vs)
		r := g.Right.WireVals(p, inputs, us, vs)
		*us = append(*us, l)
		*vs = append(*vs, r)
		return field.Mul(l, r, p)
	default:
		panic("circuit: unknown gate kind")
	}
}

// CountMuls returns the number of multiplication gates in the tree.
func (g *Gate) CountMuls() int {
	switch g.Kind {
	case Add:
		return g.Left.CountMuls() + g.Right.CountMuls()
	case Mul:
		return g.Left.CountMuls() + g.Right.CountMuls() + 1
	default:
		return 0
	}
}

// CountGates returns the number of Add+Mul gates in the tree.
func (g *Gate) CountGates() int {
	switch g.Kind {
	case Add:
		return g.Left.CountGates() + g.Right.CountGates() + 1
	case Mul:
		return g.Left.CountGates() + g.Right.CountGates() + 1
	default:
		return 0
	}
}

// Circuit is a forest of gate trees sharing a modulus.
type Circuit struct {
	OutGates []*Gate
	Modulus  uint64
}

// Eval evaluates every output gate.
func (c *Circuit) Eval(inputs []uint64) []uint64 {
	out := make([]uint64, len(c.OutGates))
	for i, g := range c.OutGates {
		out[i] = g.Eval(c.Modulus, inputs)
	}
	return out
}

// WireVals evaluates every output gate and collects the concatenated U, V
// sequences across all of them, in output order — the same order the
// prover's polynomial interpolation consumes them in.
func (c *Circuit) WireVals(inputs []uint64) (outs []uint64, us []uint64, vs []uint64) {
	outs = make([]uint64, len(c.OutGates))
	for i, g := range c.OutGates {
		outs[i] = g.WireVals(c.Modulus, inputs, &us, &vs)
	}
	return
}

// CountMuls returns the total multiplication-gate count across the forest.
func (c *Circuit) CountMuls() int {
	n := 0
	for _, g := range c.OutGates {
		n += g.CountMuls()
	}
	return n
}

// CountGates returns the total gate count across the forest.
func (c *Circuit) CountGates() int {
	n := 0
	for _, g := range c.OutGates {
		n += g.CountGates()
	}
	return n
}

// BitTest builds C(x) = x * (x - 1), the single-input bit-validity
// predicate: zero iff x in {0,1}.
func BitTest(p uint64) *Circuit {
	negOne := p - 1
	gate := MulGate(InputGate(0), AddGate(InputGate(0), ConstGate(negOne)))
	return &Circuit{OutGates: []*Gate{gate}, Modulus: p}
}

// BitvectorTest builds C(x_1,...,x_l) = [x_1*(x_1-1), ..., x_l*(x_l-1)], the
// per-component bit-validity predicate this protocol proves — the only
// circuit this system supports, though the abstraction above is general.
func BitvectorTest(p uint64, l int) *Circuit {
	negOne := p - 1
	gates := make([]*Gate, l)
	for i := 0; i < l; i++ {
		gates[i] = MulGate(InputGate(i), AddGate(InputGate(i), ConstGate(negOne)))
	}
	return &Circuit{OutGates: gates, Modulus: p}
}
