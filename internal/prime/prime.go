// Package prime implements deterministic primality checking by trial
// division bounded by the integer square root of the candidate.
package prime

import "math"

// IsPrime returns true if n is a prime number, and false otherwise.
// Negative numbers, zero and one are never prime. The check is pure and
// safe for unsynchronized concurrent use.
func IsPrime(n int64) bool {
	if n < 2 {
		return false
	}
	return IsPrimeUint64(uint64(n))
}

// IsPrimeUint64 returns true if n is a prime number, and false otherwise.
// It accepts the full uint64 range; near the top of the range a prime costs
// about 2^31 divisions, which is the documented worst case.
func IsPrimeUint64(n uint64) bool {
	prime, _ := trialDivide(n)
	return prime
}

// trialDivide runs the sqrt-bounded scan and reports how many divisibility
// tests it performed. Even numbers are settled with a single test; odd
// candidates are scanned with odd divisors only.
func trialDivide(n uint64) (bool, uint64) {
	if n < 2 {
		return false, 0
	}
	if n%2 == 0 {
		return n == 2, 1
	}
	limit := sqrtFloor(n)
	trials := uint64(1)
	for i := uint64(3); i <= limit; i += 2 {
		trials++
		if n%i == 0 {
			return false, trials
		}
	}
	return true, trials
}

// sqrtFloor returns floor(sqrt(n)), corrected for float64 rounding so the
// boundary divisor of a perfect square is never skipped.
func sqrtFloor(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && r > n/r {
		r--
	}
	for r+1 <= n/(r+1) {
		r++
	}
	return r
}
