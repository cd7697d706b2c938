package average

import "github.com/okian/torus/internal/domain/torus"

// Seed is the average of a window seen for the first time: the latest flee
// point itself.
func Seed[C torus.Coordinate](latest torus.Point[C]) torus.Point[C] {
	return latest
}

// Grow adds latest to an average over n-1 items: (prev*(n-1) + latest) / n.
func Grow[C torus.Coordinate](prev, latest torus.Point[C], n int) torus.Point[C] {
	return torus.Point[C]{
		X: growAxis(prev.X, latest.X, n),
		Y: growAxis(prev.Y, latest.Y, n),
	}
}

// Slide replaces oldest with latest in a full window of n items:
// (prev*(n-1) - oldest + latest) / (n-1).
//
// The n-1 divisor makes the result drift from the exact mean; the value is
// kept as is. With n == 1 the divisor is zero and latest is returned.
func Slide[C torus.Coordinate](prev, oldest, latest torus.Point[C], n int) torus.Point[C] {
	return torus.Point[C]{
		X: slideAxis(prev.X, oldest.X, latest.X, n),
		Y: slideAxis(prev.Y, oldest.Y, latest.Y, n),
	}
}

func growAxis[C torus.Coordinate](prev, latest C, n int) C {
	if n <= 1 {
		return latest
	}
	sum := torus.Mul64(uint64(prev), uint64(n-1)).Add64(uint64(latest))
	q, _ := sum.DivMod64(uint64(n))
	return C(q.Lo)
}

func slideAxis[C torus.Coordinate](prev, oldest, latest C, n int) C {
	if n <= 1 {
		return latest
	}
	// Add before subtracting so the intermediate stays non-negative whenever
	// the true result is.
	sum := torus.Mul64(uint64(prev), uint64(n-1)).Add64(uint64(latest))
	sum, borrow := sum.Sub64(uint64(oldest))
	if borrow {
		return 0
	}
	q, _ := sum.DivMod64(uint64(n - 1))
	return C(q.Lo)
}
