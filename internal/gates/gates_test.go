package gates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

var (
	q0 = ir.LineQubit{X: 0}
	q1 = ir.LineQubit{X: 1}
	q2 = ir.LineQubit{X: 2}
)

func TestVocabularyIsUnitary(t *testing.T) {
	for name, e := range vocabulary {
		if e.matrix == nil {
			continue
		}
		params := make([]float64, e.params)
		for i := range params {
			params[i] = 0.37 * float64(i+1)
		}
		m := e.matrix(params)
		assert.Equal(t, 1<<e.qubits, m.Dim(), name)
		assert.True(t, linalg.IsUnitary(m, 1e-12), name)
	}
}

func TestPhasedXMatchesRotations(t *testing.T) {
	theta, phi := 1.1, -0.4
	want := linalg.Product(RzMatrix(phi), RxMatrix(theta), RzMatrix(-phi))
	assert.True(t, linalg.AllClose(PhasedXMatrix(theta, phi), want, 1e-12))

	assert.True(t, linalg.AllClose(PhasedXMatrix(theta, 0), RxMatrix(theta), 1e-12))
}

func TestPauliXIsHalfTurn(t *testing.T) {
	x, ok := Unitary(ir.On(ir.Gate{Name: X}, q0))
	require.True(t, ok)
	assert.True(t, linalg.AllCloseUpToGlobalPhase(RxMatrix(math.Pi), x, 1e-12))
	assert.True(t, linalg.AllCloseUpToGlobalPhase(PhasedXMatrix(math.Pi, math.Pi), x, 1e-12))
}

func TestMSMatrix(t *testing.T) {
	xx := linalg.Kron(mPauliX, mPauliX)
	theta := 0.3
	want := linalg.Identity(4).Scale(complex(math.Cos(theta), 0)).Sub(xx.Scale(complex(0, math.Sin(theta))))
	assert.True(t, linalg.AllClose(MSMatrix(theta), want, 1e-12))
}

func TestCNOTControlIsFirstQubit(t *testing.T) {
	m, ok := Unitary(ir.On(ir.Gate{Name: CNOT}, q0, q1))
	require.True(t, ok)
	// |10> -> |11>
	assert.Equal(t, complex(1, 0), m.At(3, 2))
	assert.Equal(t, complex(1, 0), m.At(0, 0))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		op      ir.Operation
		wantErr string
	}{
		{"ok", ir.On(Rx(1), q0), ""},
		{"unknown gate passes", ir.On(ir.Gate{Name: "mystery"}, q0, q1, q2), ""},
		{"no qubits", ir.On(ir.Gate{Name: H}), "no qubits"},
		{"wrong arity", ir.On(ir.Gate{Name: H}, q0, q1), "want 1 qubits"},
		{"wrong params", ir.On(ir.Gate{Name: RX}, q0), "want 1 params"},
		{"repeated qubit", ir.On(ir.Gate{Name: CZ}, q0, q0), "repeated"},
		{"nan", ir.On(Ry(math.NaN()), q0), "not finite"},
		{"bad matrix", ir.On(ir.Gate{Name: Custom, Matrix: ir.Matrix{{1, 0}, {0, 1}}}, q0, q1), "4x4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.op)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		op   ir.Operation
		want Kind
	}{
		{"rx native", ir.On(Rx(0.5), q0), Native},
		{"ry native", ir.On(Ry(0.5), q0), Native},
		{"phased_x native", ir.On(PhasedXGate(1, 2), q0), Native},
		{"ms native", ir.On(MSGate(math.Pi/4), q0, q1), Native},
		{"measure native", ir.On(MeasureGate("m"), q0, q1, q2), Native},
		{"rz unitary", ir.On(Rz(0.5), q0), Synthesizable},
		{"h unitary", ir.On(ir.Gate{Name: H}, q0), Synthesizable},
		{"ccx unitary", ir.On(ir.Gate{Name: CCX}, q0, q1, q2), Synthesizable},
		{"custom unitary", ir.On(CustomGate(mPauliX), q0), Synthesizable},
		{"unknown opaque", ir.On(ir.Gate{Name: "reset"}, q0), Opaque},
		{"malformed ms opaque", ir.On(MSGate(1), q0), Opaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.op)
			assert.Equal(t, tt.want, c.Kind, c.Kind.String())
			if tt.want == Synthesizable {
				assert.Equal(t, 1<<len(tt.op.Qubits), c.Matrix.Dim())
			}
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "native", Native.String())
	assert.Equal(t, "synthesizable", Synthesizable.String())
	assert.Equal(t, "opaque", Opaque.String())

	// The kind constant must not shadow the unitary lookup.
	m, ok := Unitary(ir.On(ir.Gate{Name: H}, ir.LineQubit{X: 0}))
	require.True(t, ok)
	assert.Equal(t, Synthesizable, Classify(ir.On(CustomGate(m), ir.LineQubit{X: 0})).Kind)
}
