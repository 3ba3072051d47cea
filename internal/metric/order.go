package metric

import "math"

// rank orders fitness classes: finite values first, then infinities, then NaN.
func rank(f float64) int {
	switch {
	case math.IsNaN(f):
		return 2
	case math.IsInf(f, 0):
		return 1
	default:
		return 0
	}
}

// Less reports whether fitness a is better than b. Lower is better, and any
// non-finite fitness is worse than every finite one. Less is a strict weak
// order, so it is safe as a sort comparator.
func Less(a, b float64) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	if ra == 2 {
		return false
	}
	return a < b
}
