// Package fourier turns sampled closed curves into epicycle coefficients and
// rebuilds the curves progressively from them.
//
// Coefficients are indexed by position, and each position maps to a signed
// harmonic number: 0, +1, -1, +2, -2, ... Truncating the coefficient table at
// m terms therefore always keeps the lowest harmonics, which carry most of the
// shape, and drops the fine detail first.
package fourier

// Frequency returns the signed harmonic number for coefficient index i.
func Frequency(i int) int {
	k := (1 + i) >> 1
	if i&1 == 1 {
		return -k
	}
	return k
}

// Frequencies returns the harmonic numbers for indices [0, m).
func Frequencies(m int) []int {
	if m <= 0 {
		return nil
	}
	ks := make([]int, m)
	for i := range ks {
		ks[i] = Frequency(i)
	}
	return ks
}
