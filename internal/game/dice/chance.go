package dice

// Range returns a uniform int in [lo, hi]. When hi < lo the bounds are swapped.
//
// Precondition: src must be non-nil.
// Postcondition: lo <= result <= hi (after swapping).
func Range(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// OneIn reports true with probability 1/n. n <= 1 always succeeds.
func OneIn(src Source, n int) bool {
	if n <= 1 {
		return true
	}
	return src.Intn(n) == 0
}

// floatResolution is the number of buckets FloatRange draws from.
const floatResolution = 1_000_000

// FloatRange returns a value in [lo, hi) with a resolution of one millionth of the span.
func FloatRange(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*float64(src.Intn(floatResolution))/floatResolution
}

// Chance reports true with probability p, where p is clamped to [0, 1].
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return FloatRange(src, 0, 1) < p
}
