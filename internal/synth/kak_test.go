package synth

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

func namedUnitary(t *testing.T, name string) linalg.Matrix {
	t.Helper()
	m, ok := gates.Unitary(ir.On(ir.Gate{Name: name}, qa, qb))
	require.True(t, ok, name)
	return m
}

func assertInWeylChamber(t *testing.T, v [3]float64) {
	t.Helper()
	const eps = 1e-9
	x, y, z := v[0], v[1], v[2]
	assert.LessOrEqual(t, x, math.Pi/4+eps, "x=%v", x)
	assert.GreaterOrEqual(t, x, y-eps, "x=%v y=%v", x, y)
	assert.GreaterOrEqual(t, y, math.Abs(z)-eps, "y=%v z=%v", y, z)
	if x >= math.Pi/4-eps {
		assert.GreaterOrEqual(t, z, -eps, "z=%v on x=π/4", z)
	}
}

func TestKAKHaarRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(41, 42))
	for i := 0; i < 100; i++ {
		u := linalg.RandomUnitary(rng, 4)
		kak, err := KAK(u, atol)
		require.NoError(t, err, "sample %d", i)

		assert.True(t, linalg.AllClose(kak.Unitary(), u, 1e-7), "sample %d", i)
		assertInWeylChamber(t, kak.Interaction)
		for q := 0; q < 2; q++ {
			assert.True(t, linalg.IsUnitary(kak.Before[q], 1e-9))
			assert.True(t, linalg.IsUnitary(kak.After[q], 1e-9))
		}
	}
}

func TestKAKInteractionCoefficients(t *testing.T) {
	q := math.Pi / 4
	tests := []struct {
		name string
		u    linalg.Matrix
		want [3]float64
	}{
		{"cnot", namedUnitary(t, gates.CNOT), [3]float64{q, 0, 0}},
		{"cz", namedUnitary(t, gates.CZ), [3]float64{q, 0, 0}},
		{"iswap", namedUnitary(t, gates.ISWAP), [3]float64{q, q, 0}},
		{"swap", namedUnitary(t, gates.SWAP), [3]float64{q, q, q}},
		{"ms", gates.MSMatrix(0.3), [3]float64{0.3, 0, 0}},
		{"identity", linalg.Identity(4), [3]float64{0, 0, 0}},
		{"local product", linalg.Kron(gates.RxMatrix(0.4), gates.RzMatrix(1.2)), [3]float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kak, err := KAK(tt.u, atol)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want[:], kak.Interaction[:], 1e-7)
			assert.True(t, linalg.AllClose(kak.Unitary(), tt.u, 1e-7))
		})
	}
}

func TestInteractionMatrixMatchesMS(t *testing.T) {
	// exp(i·c·XX) is ms(-c).
	assert.True(t, linalg.AllClose(InteractionMatrix([3]float64{0.2, 0, 0}), gates.MSMatrix(-0.2), 1e-12))
}

func TestKAKRejectsNonUnitary(t *testing.T) {
	_, err := KAK(linalg.Diag(1, 1, 1, 2), atol)
	require.ErrorIs(t, err, ErrNotUnitary)

	_, err = KAK(linalg.Identity(2), atol)
	require.ErrorIs(t, err, ErrNotUnitary)
}
