package hll

import (
	"errors"
	"fmt"
	"math"
)

const (
	// two32 is the size of the 32-bit hash space.
	two32 = 1 << 32

	// smallRangeFactor bounds the small-range regime: raw <= 2.5 * m.
	smallRangeFactor = 2.5

	// largeRangeThreshold bounds the large-range regime: raw > 2^32 / 30.
	largeRangeThreshold = two32 / 30.0
)

// ErrIncompatible is returned when merging estimators with different
// register counts.
var ErrIncompatible = errors.New("hll: incompatible estimators")

// Estimator is a HyperLogLog cardinality estimator over 32-bit hashes.
//
// An Estimator owns 2^p one-byte registers. Each register holds the largest
// rank (leading zeros + 1) observed among hashes whose low p bits select it.
//
// Estimator is NOT safe for concurrent mutation. Add, AddString, AddHash,
// Merge and Reset must be serialized by the caller. Concurrent Estimate calls
// against an instance that is not being mutated are safe.
type Estimator struct {
	registers   []uint8  // One register per bucket, len == 1<<precision
	precision   uint8    // Clamped to [MinPrecision, MaxPrecision]
	mask        uint32   // registerCount - 1
	alphaFactor float64  // alpha(m) * m * m, fixed at construction
	seed        uint32   // Hash seed, fixed at construction
	hash        HashFunc // Hash collaborator, fixed at construction
}

// Option configures an Estimator at construction time.
type Option func(*Estimator)

// WithSeed sets the seed passed to the hash function on every Add.
// The seed cannot be changed after construction.
func WithSeed(seed uint32) Option {
	return func(e *Estimator) {
		e.seed = seed
	}
}

// WithHash sets the hash function used by Add and AddString.
// A nil function leaves the default (Murmur3) in place.
func WithHash(fn HashFunc) Option {
	return func(e *Estimator) {
		if fn != nil {
			e.hash = fn
		}
	}
}

// New creates an estimator with 2^precision registers. Precision values
// outside [MinPrecision, MaxPrecision] are clamped to the nearest bound.
func New(precision int, opts ...Option) *Estimator {
	p := ClampPrecision(precision)
	m := 1 << p

	e := &Estimator{
		registers:   make([]uint8, m),
		precision:   uint8(p),
		mask:        uint32(m - 1),
		alphaFactor: Alpha(m) * float64(m) * float64(m),
		hash:        Murmur3,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Add hashes data and records it in the estimator.
func (e *Estimator) Add(data []byte) {
	e.AddHash(e.hash(data, e.seed))
}

// AddString hashes s and records it in the estimator.
func (e *Estimator) AddString(s string) {
	e.AddHash(e.hash([]byte(s), e.seed))
}

// AddHash records a precomputed 32-bit hash. The caller is responsible for
// hashing every item with the same function and seed.
func (e *Estimator) AddHash(h uint32) {
	idx := h & e.mask
	r := rank(h>>e.precision, e.precision)
	if r > e.registers[idx] {
		e.registers[idx] = r
	}
}

// Estimate returns the approximate number of distinct items added.
//
// The raw harmonic-mean estimate is corrected with linear counting in the
// small range and with the hash-space saturation formula in the large range.
func (e *Estimator) Estimate() float64 {
	m := float64(len(e.registers))
	raw, zeros := e.rawEstimate()

	switch {
	case raw <= smallRangeFactor*m:
		if zeros > 0 {
			return linearCounting(m, float64(zeros))
		}
		return raw
	case raw >= two32:
		// 1 - raw/2^32 <= 0: the log argument is out of domain.
		return raw
	case raw > largeRangeThreshold:
		return -two32 * math.Log(1-raw/two32)
	default:
		return raw
	}
}

// rawEstimate returns the uncorrected harmonic-mean estimate and the number
// of zero registers.
func (e *Estimator) rawEstimate() (float64, int) {
	var sum float64
	var zeros int
	for _, r := range e.registers {
		sum += math.Ldexp(1, -int(r))
		if r == 0 {
			zeros++
		}
	}
	return e.alphaFactor / sum, zeros
}

// Count returns Estimate rounded to the nearest integer.
func (e *Estimator) Count() uint64 {
	return uint64(math.Round(e.Estimate()))
}

// Reset sets every register to zero. Precision, seed and hash are kept.
func (e *Estimator) Reset() {
	clear(e.registers)
}

// Merge folds other into e by taking the element-wise maximum of registers.
// The result estimates the cardinality of the union of both inputs.
//
// Both estimators must have the same register count and seed; otherwise
// Merge returns an error wrapping ErrIncompatible and neither estimator is
// modified. Hash functions cannot be compared, so matching them is up to the
// caller.
func (e *Estimator) Merge(other *Estimator) error {
	if other == nil {
		return fmt.Errorf("%w: nil estimator", ErrIncompatible)
	}
	if len(other.registers) != len(e.registers) {
		return fmt.Errorf("%w: register counts differ (%d != %d)",
			ErrIncompatible, len(e.registers), len(other.registers))
	}
	if other.seed != e.seed {
		return fmt.Errorf("%w: seeds differ (%d != %d)",
			ErrIncompatible, e.seed, other.seed)
	}

	for i, r := range other.registers {
		if r > e.registers[i] {
			e.registers[i] = r
		}
	}

	return nil
}

// Clone returns a deep copy of the estimator.
func (e *Estimator) Clone() *Estimator {
	c := *e
	c.registers = make([]uint8, len(e.registers))
	copy(c.registers, e.registers)
	return &c
}

// Precision returns the clamped precision.
func (e *Estimator) Precision() int {
	return int(e.precision)
}

// RegisterCount returns the number of registers (2^precision).
func (e *Estimator) RegisterCount() int {
	return len(e.registers)
}

// Seed returns the hash seed.
func (e *Estimator) Seed() uint32 {
	return e.seed
}

// Registers returns a copy of the register array.
func (e *Estimator) Registers() []uint8 {
	regs := make([]uint8, len(e.registers))
	copy(regs, e.registers)
	return regs
}

// StandardError returns the theoretical relative standard error of this
// estimator, 1.04 / sqrt(m).
func (e *Estimator) StandardError() float64 {
	return StandardErrorFor(int(e.precision))
}

// linearCounting returns m * ln(m / zeros).
func linearCounting(m, zeros float64) float64 {
	return m * math.Log(m/zeros)
}
