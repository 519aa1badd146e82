// File: container/hashmap/primes.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bucket counts are primes slightly above powers of two, which keeps
// modulo distribution healthy while table sizes still roughly double
// per resize.

package hashmap

const (
	minTablePower = 4
	maxTablePower = 31
)

var powerOfTwoPrimes = [32]uint32{
	2, 2, 5, 11,
	17, 37, 67, 131,
	257, 521, 1031, 2053,
	4099, 8209, 16411, 32771,
	65537, 131101, 262147, 524309,
	1048583, 2097169, 4194319, 8388617,
	16777259, 33554467, 67108879, 134217757,
	268435459, 536870923, 1073741827, 2147483659,
}

// primeForPower returns the bucket count for a power index, clamped to
// the supported range.
func primeForPower(power int) uint32 {
	if power < minTablePower {
		power = minTablePower
	}
	if power > maxTablePower {
		power = maxTablePower
	}
	return powerOfTwoPrimes[power]
}

// powerForBuckets returns the smallest power whose prime is >= want.
func powerForBuckets(want uint32) int {
	for p := minTablePower; p <= maxTablePower; p++ {
		if powerOfTwoPrimes[p] >= want {
			return p
		}
	}
	return maxTablePower
}
