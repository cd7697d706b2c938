package torus

import (
	"fmt"
	"math"
)

// Width selects the coordinate precision of a deployment.
type Width int

// Supported widths.
const (
	Width32 Width = 32
	Width64 Width = 64
)

// ParseWidth validates a configured bit width.
func ParseWidth(bitsize int) (Width, error) {
	switch Width(bitsize) {
	case Width32, Width64:
		return Width(bitsize), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedWidth, bitsize)
	}
}

// Max returns M for the width.
func (w Width) Max() uint64 {
	if w == Width32 {
		return math.MaxUint32
	}
	return math.MaxUint64
}

func (w Width) String() string {
	return fmt.Sprintf("uint%d", int(w))
}
