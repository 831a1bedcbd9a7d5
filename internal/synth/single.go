package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/roach88/ionc/internal/gates"
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

// Rotation is the factorization U ≅ Ry(Tilt)·PhasedX(Theta, Phi)·Ry(-Tilt).
// Theta is in [0, π]. A zero Theta means U is the identity up to phase.
type Rotation struct {
	Theta float64
	Phi   float64
	Tilt  float64
}

// IsIdentity reports whether the rotation is trivial.
func (r Rotation) IsIdentity() bool {
	return r.Theta == 0
}

// Matrix returns the unitary the rotation describes.
func (r Rotation) Matrix() linalg.Matrix {
	if r.IsIdentity() {
		return linalg.Identity(2)
	}
	return linalg.Product(gates.RyMatrix(r.Tilt), gates.PhasedXMatrix(r.Theta, r.Phi), gates.RyMatrix(-r.Tilt))
}

// SingleQubitRotation factors a 2×2 unitary into a tilted X rotation.
//
// Angles are normalized so the result is unique: Tilt in (-π/2, π/2], Phi in
// (-π, π], and Phi in (0, π] for half turns, where the axis and its reverse
// give the same gate. Components below atol are snapped to zero. u must be
// unitary within gates.DefaultUnitarityTolerance; approximate matrices are
// projected with linalg.NearestUnitary first.
func SingleQubitRotation(u linalg.Matrix, atol float64) (Rotation, error) {
	if u.Dim() != 2 || !linalg.IsUnitary(u, gates.DefaultUnitarityTolerance) {
		return Rotation{}, fmt.Errorf("%w: want 2x2 unitary, got %dx%d", ErrNotUnitary, u.Dim(), u.Dim())
	}

	// Project onto SU(2): V = cos(θ/2)·I - i·sin(θ/2)·(n·σ).
	v := u.Scale(1 / cmplx.Sqrt(u.Det()))
	c := (real(v.At(0, 0)) + real(v.At(1, 1))) / 2
	nx := -(imag(v.At(1, 0)) + imag(v.At(0, 1))) / 2
	ny := (real(v.At(1, 0)) - real(v.At(0, 1))) / 2
	nz := (imag(v.At(1, 1)) - imag(v.At(0, 0))) / 2
	if c < 0 {
		c, nx, ny, nz = -c, -nx, -ny, -nz
	}
	s := math.Sqrt(nx*nx + ny*ny + nz*nz)
	theta := 2 * math.Atan2(s, c)
	if theta < atol || s == 0 {
		return Rotation{}, nil
	}
	nx, ny, nz = nx/s, ny/s, nz/s

	// Tilting the equatorial axis (cos φ, sin φ, 0) by Ry(a) gives
	// (cos φ cos a, sin φ, -cos φ sin a).
	var tilt, cosPhi float64
	if r := math.Hypot(nx, nz); r >= atol {
		tilt, cosPhi = math.Atan2(-nz, nx), r
		if tilt > math.Pi/2 {
			tilt, cosPhi = tilt-math.Pi, -r
		} else if tilt <= -math.Pi/2 {
			tilt, cosPhi = tilt+math.Pi, -r
		}
	}
	phi := math.Atan2(ny, cosPhi)
	if phi <= -math.Pi+atol {
		phi += 2 * math.Pi
	}
	if math.Abs(theta-math.Pi) < atol && phi <= atol {
		phi += math.Pi
	}
	phi = math.Min(phi, math.Pi)

	return Rotation{
		Theta: snap(theta, atol),
		Phi:   snap(phi, atol),
		Tilt:  snap(tilt, atol),
	}, nil
}

// snap folds values within atol of zero, including -0, to zero.
func snap(v, atol float64) float64 {
	if math.Abs(v) < atol {
		return 0
	}
	return v
}

// SingleQubitOperations synthesizes u on q. The identity yields an empty,
// non-nil slice.
func SingleQubitOperations(q ir.Qubit, u linalg.Matrix, atol float64) ([]ir.Operation, error) {
	rot, err := SingleQubitRotation(u, atol)
	if err != nil {
		return nil, err
	}
	return rotationOperations(q, rot), nil
}

func rotationOperations(q ir.Qubit, rot Rotation) []ir.Operation {
	ops := make([]ir.Operation, 0, 3)
	if rot.IsIdentity() {
		return ops
	}
	if rot.Tilt != 0 {
		ops = append(ops, ir.On(gates.Ry(-rot.Tilt), q))
	}
	ops = append(ops, ir.On(gates.PhasedXGate(rot.Theta, rot.Phi), q))
	if rot.Tilt != 0 {
		ops = append(ops, ir.On(gates.Ry(rot.Tilt), q))
	}
	return ops
}

// DecomposeSingleQubit rewrites a one-qubit operation into native gates. It
// returns ErrNotDecomposable when op exposes no unitary, which is distinct
// from the empty sequence returned for an identity.
func DecomposeSingleQubit(op ir.Operation, atol float64) ([]ir.Operation, error) {
	if len(op.Qubits) != 1 {
		return nil, fmt.Errorf("synth: %s acts on %d qubits, want 1", op.Gate.Name, len(op.Qubits))
	}
	u, ok := gates.Unitary(op)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDecomposable, op)
	}
	return SingleQubitOperations(op.Qubits[0], u, atol)
}
