package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Gate describes what an operation does, independent of the qubits it acts on.
//
// Name selects an entry of the gate vocabulary (see package gates). Params
// holds rotation angles in radians. Matrix is only set for custom "unitary"
// gates. Key is the measurement key for "measure".
type Gate struct {
	Name   string    `json:"name"`
	Params []float64 `json:"params,omitempty"`
	Matrix Matrix    `json:"matrix,omitempty"`
	Key    string    `json:"key,omitempty"`
}

// Operation is a gate applied to an ordered list of qubits.
type Operation struct {
	Gate   Gate
	Qubits []Qubit
}

// On builds an operation, copying params, matrix, and qubits so the result
// shares no backing storage with the caller.
func On(g Gate, qubits ...Qubit) Operation {
	g.Params = append([]float64(nil), g.Params...)
	if len(g.Params) == 0 {
		g.Params = nil
	}
	g.Matrix = g.Matrix.Clone()
	return Operation{Gate: g, Qubits: append([]Qubit(nil), qubits...)}
}

// String renders the operation as "name(p0, p1) q0, q1". Angles use six
// decimals; a measurement key appears in brackets after the name.
func (op Operation) String() string {
	var b strings.Builder
	b.WriteString(op.Gate.Name)
	if op.Gate.Key != "" {
		b.WriteString("[")
		b.WriteString(op.Gate.Key)
		b.WriteString("]")
	}
	if len(op.Gate.Params) > 0 {
		b.WriteString("(")
		for i, p := range op.Gate.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatAngle(p))
		}
		b.WriteString(")")
	}
	for i, q := range op.Qubits {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(q.String())
	}
	return b.String()
}

// ApproxEqual reports whether two operations have the same gate name, key,
// and qubits, with params and matrices equal within atol.
func (op Operation) ApproxEqual(o Operation, atol float64) bool {
	if op.Gate.Name != o.Gate.Name || op.Gate.Key != o.Gate.Key {
		return false
	}
	if len(op.Qubits) != len(o.Qubits) || len(op.Gate.Params) != len(o.Gate.Params) {
		return false
	}
	for i := range op.Qubits {
		if CompareQubits(op.Qubits[i], o.Qubits[i]) != 0 {
			return false
		}
	}
	for i := range op.Gate.Params {
		if math.Abs(op.Gate.Params[i]-o.Gate.Params[i]) > atol {
			return false
		}
	}
	return op.Gate.Matrix.ApproxEqual(o.Gate.Matrix, atol)
}

// operationJSON is the wire form of an Operation. Qubits travel as their
// text form and are parsed back with ParseQubit.
type operationJSON struct {
	Gate   Gate     `json:"gate"`
	Qubits []string `json:"qubits"`
}

// MarshalJSON implements json.Marshaler.
func (op Operation) MarshalJSON() ([]byte, error) {
	qs := make([]string, len(op.Qubits))
	for i, q := range op.Qubits {
		qs[i] = q.String()
	}
	return json.Marshal(operationJSON{Gate: op.Gate, Qubits: qs})
}

// UnmarshalJSON implements json.Unmarshaler.
func (op *Operation) UnmarshalJSON(data []byte) error {
	var raw operationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	qs := make([]Qubit, len(raw.Qubits))
	for i, s := range raw.Qubits {
		q, err := ParseQubit(s)
		if err != nil {
			return fmt.Errorf("qubits[%d]: %w", i, err)
		}
		qs[i] = q
	}
	*op = Operation{Gate: raw.Gate, Qubits: qs}
	return nil
}

// Moment is a set of operations acting on disjoint qubits.
type Moment struct {
	Operations []Operation `json:"operations"`
}

// Circuit is an ordered list of moments.
type Circuit struct {
	Name    string   `json:"name,omitempty"`
	Moments []Moment `json:"moments"`
}

// NewCircuit builds a circuit from ops using Append.
func NewCircuit(name string, ops ...Operation) *Circuit {
	c := &Circuit{Name: name}
	c.Append(ops...)
	return c
}

// Append inserts each operation into the earliest moment after the last
// moment that touches any of its qubits.
func (c *Circuit) Append(ops ...Operation) {
	for _, op := range ops {
		idx := 0
		for i := len(c.Moments) - 1; i >= 0; i-- {
			if c.Moments[i].touches(op.Qubits) {
				idx = i + 1
				break
			}
		}
		if idx == len(c.Moments) {
			c.Moments = append(c.Moments, Moment{})
		}
		c.Moments[idx].Operations = append(c.Moments[idx].Operations, op)
	}
}

func (m Moment) touches(qs []Qubit) bool {
	for _, op := range m.Operations {
		for _, a := range op.Qubits {
			for _, b := range qs {
				if CompareQubits(a, b) == 0 {
					return true
				}
			}
		}
	}
	return false
}

// AllOperations flattens the circuit in moment order.
func (c *Circuit) AllOperations() []Operation {
	var ops []Operation
	for _, m := range c.Moments {
		ops = append(ops, m.Operations...)
	}
	return ops
}

// Qubits returns every qubit the circuit touches, sorted.
func (c *Circuit) Qubits() []Qubit {
	seen := make(map[string]Qubit)
	for _, op := range c.AllOperations() {
		for _, q := range op.Qubits {
			seen[q.String()] = q
		}
	}
	qs := make([]Qubit, 0, len(seen))
	for _, q := range seen {
		qs = append(qs, q)
	}
	SortQubits(qs)
	return qs
}

// FormatAngle renders an angle with six decimals for display. Values that
// would print as -0.000000 print as 0.000000.
func FormatAngle(v float64) string {
	if math.Abs(v) < 5e-7 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FormatParam renders a float as its shortest round-trip decimal string,
// with negative zero folded into zero. Used by canonical hashing.
func FormatParam(v float64) string {
	if v == 0 {
		v = 0 // clears the sign of -0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
