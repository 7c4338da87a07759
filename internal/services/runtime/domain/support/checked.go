package support

// Max returns the largest value representable by T.
func Max[T Unsigned]() T {
	return ^T(0)
}

// CheckedAdd returns a+b, or false when the sum wraps.
func CheckedAdd[T Unsigned](a, b T) (T, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// CheckedSub returns a-b, or false when b exceeds a.
func CheckedSub[T Unsigned](a, b T) (T, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// CheckedNext returns v+1, or false at the top of T's range.
func CheckedNext[T Unsigned](v T) (T, bool) {
	return CheckedAdd(v, 1)
}

// Headroom reports whether v can absorb n further increments without wrapping.
func Headroom[T Unsigned](v T, n uint64) bool {
	return n <= uint64(Max[T]()-v)
}
