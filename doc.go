// Package hll provides a HyperLogLog cardinality estimator for Go.
//
// A HyperLogLog estimator answers "approximately how many distinct items have
// been observed?" in constant memory, without storing the items. Adding the
// same item twice has no effect, and two estimators can be merged into one
// that estimates the size of the union of their inputs.
//
// # Algorithm
//
// Each item is hashed to 32 bits. The low p bits (the precision) select one
// of m = 2^p registers. The remaining 32-p bits are scanned for their leading
// zeros; the register keeps the largest "leading zeros + 1" (the rank) it has
// seen. A rare hash with many leading zeros is evidence of many distinct items.
//
// [Estimator.Estimate] combines the registers with a harmonic mean scaled by a
// bias constant alpha(m) * m^2, and applies one of three regimes:
//
//   - Small range (raw <= 2.5m): linear counting, m * ln(m / zeros), while
//     some registers are still zero.
//   - Normal range: the raw estimate.
//   - Large range (raw > 2^32/30): -2^32 * ln(1 - raw/2^32), correcting for
//     hash collisions as the 32-bit space fills up.
//
// # Choosing Precision
//
// Precision trades memory for accuracy. Memory is one byte per register and
// the relative standard error is about 1.04 / sqrt(m):
//
//	p=4   16 B      26%
//	p=10  1 KiB     3.25%
//	p=14  16 KiB    0.81%
//	p=16  64 KiB    0.41%
//
// [New] clamps precision to [MinPrecision, MaxPrecision] rather than failing.
// Use [PrecisionForError] to pick a precision for a target error.
//
// # Hashing
//
// The estimator does not implement a hash function. By default it uses
// MurmurHash3 x86_32 ([Murmur3]) with seed 0; [XXH3] is also provided, and
// any [HashFunc] can be supplied with [WithHash]. The hash and seed are fixed
// at construction, since changing either mid-stream would make registers
// inconsistent. Estimators are only meaningfully merged when they share both;
// [Estimator.Merge] rejects a seed mismatch, but cannot detect a different hash.
//
// # Thread Safety
//
// [Estimator] is NOT thread-safe. Add, Merge and Reset are read-modify-write
// operations on the registers and must be externally serialized. Concurrent
// calls to Estimate on an estimator that is not being modified are safe.
//
// # References
//
//   - HyperLogLog: http://algo.inria.fr/flajolet/Publications/FlFuGaMe07.pdf
//   - MurmurHash3: https://github.com/aappleby/smhasher
package hll
