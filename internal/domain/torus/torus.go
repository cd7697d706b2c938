// Package torus implements integer geometry on a wrap-around plane.
//
// Each axis runs from 0 to M, the maximum value of the coordinate type, and
// M is adjacent to 0. Two widths exist (uint32 and uint64); the generic
// functions keep a single deployment on one of them.
package torus

// Coordinate is the set of coordinate widths the plane supports.
type Coordinate interface {
	~uint32 | ~uint64
}

// Max returns M for the coordinate type.
func Max[C Coordinate]() C {
	return ^C(0)
}

// Point is a location on the plane.
type Point[C Coordinate] struct {
	X C
	Y C
}

// DistanceSquared returns the squared wrap-around distance to q.
func (p Point[C]) DistanceSquared(q Point[C]) Uint128 {
	return DistanceSquared(p.X, p.Y, q.X, q.Y)
}

// Midpoint returns the wrap-around midpoint between p and q.
func (p Point[C]) Midpoint(q Point[C]) Point[C] {
	x, y := Midpoint(p.X, p.Y, q.X, q.Y)
	return Point[C]{X: x, Y: y}
}

// Antipode returns the point farthest from p.
func (p Point[C]) Antipode() Point[C] {
	x, y := Antipode(p.X, p.Y)
	return Point[C]{X: x, Y: y}
}

func absDiff[C Coordinate](a, b C) C {
	if a < b {
		return b - a
	}
	return a - b
}

// shortArc folds an axis delta onto the shorter way around.
func shortArc[C Coordinate](d C) C {
	return min(d, Max[C]()-d)
}

// DistanceSquared returns dx²+dy² where each delta is the shorter arc along
// its axis. Points on the seam (0 and M) are at distance zero from each other.
func DistanceSquared[C Coordinate](x1, y1, x2, y2 C) Uint128 {
	dx := uint64(shortArc(absDiff(x1, x2)))
	dy := uint64(shortArc(absDiff(y1, y2)))
	return Mul64(dx, dx).Add(Mul64(dy, dy))
}

// Midpoint returns the per-axis wrap-around midpoint of two points.
//
// Half of the shorter arc is always added to the smaller input and the sum is
// reduced modulo M, so the result is not symmetric under odd deltas and
// Midpoint(M, M, M, M) is (0, 0). Callers depend on these exact values.
func Midpoint[C Coordinate](x1, y1, x2, y2 C) (C, C) {
	return midAxis(x1, x2), midAxis(y1, y2)
}

func midAxis[C Coordinate](a, b C) C {
	m := Max[C]()
	d := absDiff(a, b)
	if d > m/2 {
		d = m - d
	}
	lo := b
	if a < b {
		lo = a
	}
	return (lo + d/2) % m
}

// Antipode returns the point at maximum wrap-around distance from (x, y).
//
// The first candidate is (x+M/2, y+M/2); the second is the same point shifted
// once more by M, which lands one unit lower on each axis. The first
// candidate wins ties.
func Antipode[C Coordinate](x, y C) (C, C) {
	m := Max[C]()
	x1, y1 := x+m/2, y+m/2
	x2, y2 := x1+m, y1+m

	d1 := DistanceSquared(x1, y1, x, y)
	d2 := DistanceSquared(x2, y2, x, y)
	if d1.Cmp(d2) >= 0 {
		return x1, y1
	}
	return x2, y2
}
