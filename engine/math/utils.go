package math

import "golang.org/x/exp/constraints"

func min32[T constraints.Float](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func max32[T constraints.Float](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
