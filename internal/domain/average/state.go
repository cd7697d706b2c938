package average

// State is the phase the rolling average is in for one update.
type State int

// Average phases.
const (
	// Empty: the window holds nothing, the average is absent.
	Empty State = iota
	// FirstElement: no previous average, the latest flee point is taken as is.
	FirstElement
	// Growing: the window is not yet full.
	Growing
	// SteadyState: the window is full and every update slides it by one.
	SteadyState
)

var stateNames = [...]string{
	Empty:        "empty",
	FirstElement: "first_element",
	Growing:      "growing",
	SteadyState:  "steady_state",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// States lists every phase in order.
func States() []State {
	return []State{Empty, FirstElement, Growing, SteadyState}
}

// Classify picks the phase for a window of length n and capacity c.
func Classify(n, c int, hasPrev bool) State {
	switch {
	case n <= 0:
		return Empty
	case !hasPrev:
		return FirstElement
	case n < c:
		return Growing
	default:
		return SteadyState
	}
}
