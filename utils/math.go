package utils

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampInt restricts n to the range [lo, hi].
func ClampInt(n, lo, hi int) int {
	return MinInt(MaxInt(n, lo), hi)
}
