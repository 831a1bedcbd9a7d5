package ir

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// Qubit is an opaque, totally ordered handle naming a qubit.
// Only LineQubit, GridQubit, and NamedQubit implement it.
type Qubit interface {
	fmt.Stringer
	qubit()
}

// LineQubit is a qubit on a one-dimensional register, written q(3).
type LineQubit struct {
	X int
}

func (LineQubit) qubit() {}

func (q LineQubit) String() string {
	return fmt.Sprintf("q(%d)", q.X)
}

// GridQubit is a qubit on a two-dimensional lattice, written q(0,1).
type GridQubit struct {
	Row int
	Col int
}

func (GridQubit) qubit() {}

func (q GridQubit) String() string {
	return fmt.Sprintf("q(%d,%d)", q.Row, q.Col)
}

// NamedQubit is a qubit identified only by name.
type NamedQubit struct {
	Name string
}

func (NamedQubit) qubit() {}

func (q NamedQubit) String() string {
	return q.Name
}

var (
	lineQubitRE = regexp.MustCompile(`^q\(\s*(-?\d+)\s*\)$`)
	gridQubitRE = regexp.MustCompile(`^q\(\s*(-?\d+)\s*,\s*(-?\d+)\s*\)$`)
)

// ParseQubit parses the text form produced by Qubit.String. Anything that is
// not q(N) or q(R,C) becomes a NamedQubit; the empty string is rejected.
func ParseQubit(s string) (Qubit, error) {
	if s == "" {
		return nil, fmt.Errorf("empty qubit name")
	}
	if m := lineQubitRE.FindStringSubmatch(s); m != nil {
		x, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("qubit %q: %w", s, err)
		}
		return LineQubit{X: x}, nil
	}
	if m := gridQubitRE.FindStringSubmatch(s); m != nil {
		row, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("qubit %q: %w", s, err)
		}
		col, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("qubit %q: %w", s, err)
		}
		return GridQubit{Row: row, Col: col}, nil
	}
	return NamedQubit{Name: s}, nil
}

// CompareQubits orders line qubits before grid qubits before named qubits,
// then by coordinates or name.
func CompareQubits(a, b Qubit) int {
	if c := cmp.Compare(qubitRank(a), qubitRank(b)); c != 0 {
		return c
	}
	switch qa := a.(type) {
	case LineQubit:
		return cmp.Compare(qa.X, b.(LineQubit).X)
	case GridQubit:
		qb := b.(GridQubit)
		if c := cmp.Compare(qa.Row, qb.Row); c != 0 {
			return c
		}
		return cmp.Compare(qa.Col, qb.Col)
	default:
		return cmp.Compare(a.String(), b.String())
	}
}

func qubitRank(q Qubit) int {
	switch q.(type) {
	case LineQubit:
		return 0
	case GridQubit:
		return 1
	default:
		return 2
	}
}

// SortQubits sorts qs in place by CompareQubits.
func SortQubits(qs []Qubit) {
	slices.SortFunc(qs, CompareQubits)
}

// LineQubits returns q(start) .. q(start+n-1).
func LineQubits(start, n int) []Qubit {
	qs := make([]Qubit, n)
	for i := range qs {
		qs[i] = LineQubit{X: start + i}
	}
	return qs
}
