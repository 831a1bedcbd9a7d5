package gates

import (
	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/linalg"
)

// Gate names.
const (
	I       = "i"
	X       = "x"
	Y       = "y"
	Z       = "z"
	H       = "h"
	S       = "s"
	Sdg     = "sdg"
	T       = "t"
	Tdg     = "tdg"
	RX      = "rx"
	RY      = "ry"
	RZ      = "rz"
	PhasedX = "phased_x"
	CNOT    = "cnot"
	CX      = "cx"
	CZ      = "cz"
	SWAP    = "swap"
	ISWAP   = "iswap"
	CPhase  = "cphase"
	MS      = "ms"
	CCX     = "ccx"
	Custom  = "unitary"
	Measure = "measure"
)

// DefaultUnitarityTolerance is how far a custom matrix may drift from
// unitarity (max |m·m† − I| entry) before it is rejected. Matrices written
// with fewer than about seven significant digits need a looser bound; see
// decompose.WithUnitarityTolerance.
const DefaultUnitarityTolerance = 1e-6

// Rx returns exp(-iθX/2).
func Rx(theta float64) ir.Gate {
	return ir.Gate{Name: RX, Params: []float64{theta}}
}

// Ry returns exp(-iθY/2).
func Ry(theta float64) ir.Gate {
	return ir.Gate{Name: RY, Params: []float64{theta}}
}

// Rz returns exp(-iθZ/2).
func Rz(theta float64) ir.Gate {
	return ir.Gate{Name: RZ, Params: []float64{theta}}
}

// PhasedXGate returns an X rotation by theta about the equatorial axis at
// azimuth phi: Rz(φ)·Rx(θ)·Rz(-φ).
func PhasedXGate(theta, phi float64) ir.Gate {
	return ir.Gate{Name: PhasedX, Params: []float64{theta, phi}}
}

// MSGate returns the Mølmer–Sørensen interaction exp(-iθ·XX).
func MSGate(theta float64) ir.Gate {
	return ir.Gate{Name: MS, Params: []float64{theta}}
}

// CPhaseGate returns diag(1, 1, 1, e^{iθ}).
func CPhaseGate(theta float64) ir.Gate {
	return ir.Gate{Name: CPhase, Params: []float64{theta}}
}

// MeasureGate returns a measurement recorded under key.
func MeasureGate(key string) ir.Gate {
	return ir.Gate{Name: Measure, Key: key}
}

// CustomGate wraps an explicit unitary.
func CustomGate(m linalg.Matrix) ir.Gate {
	return ir.Gate{Name: Custom, Matrix: ir.Matrix(m.Rows())}
}
