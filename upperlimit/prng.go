// Package upperlimit implements the random-footprint upper-limit sampler
// (spec §4.8, L8): for each label, place its footprint at random
// positions, reject placements overlapping other labels or the mask, and
// summarize the accepted sums with sigma clipping.
package upperlimit

import "math/rand/v2"

// Family names the PRNG family used for a label's stream: the standard
// library's PCG source. Neither the family nor the seed is written to the
// output tables; store.WriteTable writes no header metadata.
const Family = "PCG"

// Seed derives a label's reproducible per-label seed from the master seed
// and the label identity (spec §3 invariant: "The random number stream
// for label L is fully determined by (master seed, label value, and, for
// sub-labels, the parent object id + the sub-label index within the
// parent)").
func Seed(masterSeed uint64, label int) (uint64, uint64) {
	return mix(masterSeed, uint64(label)), mix(uint64(label), masterSeed)
}

// SubLabelSeed derives the seed for a sub-label stream per spec §4.8 step
// 1's alternate formula: (master_seed, num_objects + num_clumps*object_id + sub_index).
func SubLabelSeed(masterSeed uint64, numObjects, numClumps, objectID, subIndex int) (uint64, uint64) {
	composite := uint64(numObjects) + uint64(numClumps)*uint64(objectID) + uint64(subIndex)
	return Seed(masterSeed, int(composite))
}

// mix is a small, fixed, reproducible bit-mixing function (splitmix64
// style) used only to decorrelate the two halves of a PCG seed from the
// same (masterSeed, label) pair — not a cryptographic primitive.
func mix(a, b uint64) uint64 {
	x := a ^ (b + 0x9E3779B97F4A7C15 + (a << 6) + (a >> 2))
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// NewStream returns a new, independent PRNG stream seeded for label under
// masterSeed.
func NewStream(masterSeed uint64, label int) *rand.Rand {
	s1, s2 := Seed(masterSeed, label)
	return rand.New(rand.NewPCG(s1, s2))
}

// NewSubLabelStream returns a new, independent PRNG stream seeded for a
// sub-label under masterSeed.
func NewSubLabelStream(masterSeed uint64, numObjects, numClumps, objectID, subIndex int) *rand.Rand {
	s1, s2 := SubLabelSeed(masterSeed, numObjects, numClumps, objectID, subIndex)
	return rand.New(rand.NewPCG(s1, s2))
}
