package hll

import (
	"errors"
	"fmt"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// HashFunc is a deterministic, near-uniform 32-bit hash of data under seed.
// The same data and seed must always produce the same value.
type HashFunc func(data []byte, seed uint32) uint32

// ErrUnknownHash is returned by HashByName for unrecognized names.
var ErrUnknownHash = errors.New("hll: unknown hash function")

// Names accepted by HashByName.
const (
	HashMurmur3 = "murmur3"
	HashXXH3    = "xxh3"
)

// Murmur3 returns the MurmurHash3 x86_32 hash of data. It is the default
// hash of every Estimator.
func Murmur3(data []byte, seed uint32) uint32 {
	return murmur3.Sum32WithSeed(data, seed)
}

// XXH3 returns the seeded 64-bit xxh3 hash of data folded to 32 bits.
func XXH3(data []byte, seed uint32) uint32 {
	return fold64(xxh3.HashSeed(data, uint64(seed)))
}

// HashByName returns the hash function registered under name.
func HashByName(name string) (HashFunc, error) {
	switch name {
	case HashMurmur3, "":
		return Murmur3, nil
	case HashXXH3:
		return XXH3, nil
	default:
		return nil, fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownHash, name, HashMurmur3, HashXXH3)
	}
}

// fold64 mixes the upper half of a 64-bit hash into the lower half.
func fold64(h uint64) uint32 {
	return uint32(h>>32) ^ uint32(h)
}
