package synth

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

const atol = 1e-8

func TestSingleQubitHaarRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	for i := 0; i < 200; i++ {
		u := linalg.RandomUnitary(rng, 2)
		ops, err := SingleQubitOperations(qa, u, atol)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(ops), 3)
		requireAllNative(t, ops)
		assert.True(t, linalg.AllCloseUpToGlobalPhase(sequenceUnitary(t, ops, qa), u, 1e-6), "sample %d", i)
	}
}

func TestSingleQubitRotationRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	for i := 0; i < 200; i++ {
		rot, err := SingleQubitRotation(linalg.RandomUnitary(rng, 2), atol)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rot.Theta, 0.0)
		assert.LessOrEqual(t, rot.Theta, math.Pi)
		assert.Greater(t, rot.Phi, -math.Pi)
		assert.LessOrEqual(t, rot.Phi, math.Pi)
		assert.Greater(t, rot.Tilt, -math.Pi/2)
		assert.LessOrEqual(t, rot.Tilt, math.Pi/2)
	}
}

func TestSingleQubitRotationNormalization(t *testing.T) {
	tests := []struct {
		name string
		u    linalg.Matrix
		want Rotation
	}{
		{"pauli x", gates.RxMatrix(math.Pi), Rotation{Theta: math.Pi, Phi: math.Pi}},
		{"pauli y", linalg.MustFromRows([]complex128{0, -1i}, []complex128{1i, 0}), Rotation{Theta: math.Pi, Phi: math.Pi / 2}},
		{"ry on the pole", gates.RyMatrix(0.3), Rotation{Theta: 0.3, Phi: math.Pi / 2}},
		{"negative rx", gates.RxMatrix(-0.5), Rotation{Theta: 0.5, Phi: math.Pi}},
		{"rz", gates.RzMatrix(0.7), Rotation{Theta: 0.7, Phi: math.Pi, Tilt: math.Pi / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rot, err := SingleQubitRotation(tt.u, atol)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Theta, rot.Theta, 1e-9)
			assert.InDelta(t, tt.want.Phi, rot.Phi, 1e-9)
			assert.InDelta(t, tt.want.Tilt, rot.Tilt, 1e-9)
			assert.True(t, linalg.AllCloseUpToGlobalPhase(rot.Matrix(), tt.u, 1e-9))
		})
	}
}

func TestHalfTurnPhaseIsPositive(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))
	for i := 0; i < 50; i++ {
		phi := (rng.Float64()*2 - 1) * math.Pi
		rot, err := SingleQubitRotation(gates.PhasedXMatrix(math.Pi, phi), atol)
		require.NoError(t, err)
		assert.Greater(t, rot.Phi, 0.0)
		assert.LessOrEqual(t, rot.Phi, math.Pi+1e-12)
	}
}

func TestCustomXLowersToPhasedX(t *testing.T) {
	x := linalg.MustFromRows([]complex128{0, 1}, []complex128{1, 0})
	ops, err := DecomposeSingleQubit(ir.On(gates.CustomGate(x), qa), atol)
	require.NoError(t, err)

	require.Len(t, ops, 1)
	want := ir.On(gates.PhasedXGate(math.Pi, math.Pi), qa)
	assert.True(t, want.ApproxEqual(ops[0], 1e-9), ops[0].String())
}

func TestIdentityIsEmptySequence(t *testing.T) {
	for _, u := range []linalg.Matrix{
		linalg.Identity(2),
		linalg.Identity(2).Scale(cmplx.Exp(complex(0, 1.3))),
		gates.RzMatrix(1e-12),
	} {
		ops, err := SingleQubitOperations(qa, u, atol)
		require.NoError(t, err)
		assert.NotNil(t, ops)
		assert.Empty(t, ops)
	}
}

func TestDecomposeSingleQubitErrors(t *testing.T) {
	_, err := DecomposeSingleQubit(ir.On(gates.MeasureGate("m"), qa), atol)
	require.ErrorIs(t, err, ErrNotDecomposable)

	_, err = DecomposeSingleQubit(ir.On(ir.Gate{Name: "mystery"}, qa), atol)
	require.ErrorIs(t, err, ErrNotDecomposable)

	_, err = SingleQubitOperations(qa, linalg.Diag(1, 2), atol)
	require.ErrorIs(t, err, ErrNotUnitary)

	_, err = DecomposeSingleQubit(ir.On(gates.MSGate(1), qa, qb), atol)
	require.Error(t, err)
}

func TestSingleQubitDoesNotMutateInput(t *testing.T) {
	op := ir.On(gates.CustomGate(gates.RyMatrix(0.4)), qa)
	before := op.Gate.Matrix.Clone()
	_, err := DecomposeSingleQubit(op, atol)
	require.NoError(t, err)
	assert.Equal(t, before, op.Gate.Matrix)
}
