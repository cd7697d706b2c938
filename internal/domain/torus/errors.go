package torus

import "errors"

// Sentinel kinds for coordinate configuration errors.
var (
	ErrUnsupportedWidth = errors.New("unsupported coordinate width")
)
