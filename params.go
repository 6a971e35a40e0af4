package hll

import (
	"math"
	"math/bits"
)

const (
	// MinPrecision is the smallest supported precision (16 registers).
	MinPrecision = 4
	// MaxPrecision is the largest supported precision (65536 registers).
	MaxPrecision = 16
	// DefaultPrecision gives roughly 0.81% standard error in 16 KiB.
	DefaultPrecision = 14

	// hashBits is the width of the hash consumed by Add.
	hashBits = 32

	// Alpha constants for 16, 32 and 64 registers.
	alpha16 = 0.673
	alpha32 = 0.697
	alpha64 = 0.709

	// Coefficients of the general alpha formula 0.7213 / (1 + 1.079/m).
	alphaNumerator   = 0.7213
	alphaDenominator = 1.079

	// stdErrorFactor is the constant in the 1.04 / sqrt(m) error bound.
	stdErrorFactor = 1.04
)

// ClampPrecision limits p to [MinPrecision, MaxPrecision].
func ClampPrecision(p int) int {
	return min(max(p, MinPrecision), MaxPrecision)
}

// Alpha returns the bias correction constant for m registers.
func Alpha(m int) float64 {
	switch m {
	case 1 << 4:
		return alpha16
	case 1 << 5:
		return alpha32
	case 1 << 6:
		return alpha64
	default:
		return alphaNumerator / (1 + alphaDenominator/float64(m))
	}
}

// StandardErrorFor returns the relative standard error 1.04 / sqrt(2^p)
// of an estimator with precision p (after clamping).
func StandardErrorFor(p int) float64 {
	m := float64(uint(1) << ClampPrecision(p))
	return stdErrorFactor / math.Sqrt(m)
}

// PrecisionForError returns the smallest precision whose standard error is
// at most target. Targets that no precision reaches yield MaxPrecision.
func PrecisionForError(target float64) int {
	if target <= 0 {
		return MaxPrecision
	}

	for p := MinPrecision; p <= MaxPrecision; p++ {
		if StandardErrorFor(p) <= target {
			return p
		}
	}

	return MaxPrecision
}

// MemoryBytes returns the register memory of an estimator with precision p
// (after clamping), one byte per register.
func MemoryBytes(p int) int {
	return 1 << ClampPrecision(p)
}

// PrecisionForMemory returns the largest precision whose registers fit in
// budget bytes. Budgets below MemoryBytes(MinPrecision) yield MinPrecision.
func PrecisionForMemory(budget uint64) int {
	if budget < 1<<MinPrecision {
		return MinPrecision
	}

	return ClampPrecision(bits.Len64(budget) - 1)
}

// rank returns the position of the leftmost 1-bit of w within its
// (32 - p)-bit window, counted from 1. A zero window yields 32 - p + 1.
//
// w must have its top p bits clear, which holds for h >> p.
func rank(w uint32, p uint8) uint8 {
	return uint8(bits.LeadingZeros32(w)) - p + 1
}
