package ir

import (
	"encoding/json"
	"fmt"
	"math/cmplx"
)

// Matrix is a dense complex matrix carried on a gate. Rows are outer.
//
// JSON form is a nested array of [re, im] pairs:
//
//	[[[1,0],[0,0]],[[0,0],[0,1]]]
type Matrix [][]complex128

// Dim returns the row count.
func (m Matrix) Dim() int {
	return len(m)
}

// Square reports whether every row has len(m) entries.
func (m Matrix) Square() bool {
	for _, row := range m {
		if len(row) != len(m) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]complex128(nil), row...)
	}
	return out
}

// ApproxEqual reports whether m and o have the same shape and entries
// within atol.
func (m Matrix) ApproxEqual(o Matrix, atol float64) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(o[i]) {
			return false
		}
		for j := range m[i] {
			if cmplx.Abs(m[i][j]-o[i][j]) > atol {
				return false
			}
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (m Matrix) MarshalJSON() ([]byte, error) {
	rows := make([][][2]float64, len(m))
	for i, row := range m {
		rows[i] = make([][2]float64, len(row))
		for j, v := range row {
			rows[i][j] = [2]float64{real(v), imag(v)}
		}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows [][][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	out := make(Matrix, len(rows))
	for i, row := range rows {
		out[i] = make([]complex128, len(row))
		for j, pair := range row {
			switch len(pair) {
			case 1:
				out[i][j] = complex(pair[0], 0)
			case 2:
				out[i][j] = complex(pair[0], pair[1])
			default:
				return fmt.Errorf("matrix[%d][%d]: want [re, im], got %d numbers", i, j, len(pair))
			}
		}
	}
	*m = out
	return nil
}
