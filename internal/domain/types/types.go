// Package types contains common types used across the application
package types

// Point is a coordinate pair widened to uint64 for transport.
type Point struct {
	X uint64 `json:"x"`
	Y uint64 `json:"y"`
}

// EventView is the stored state of one identifier.
type EventView struct {
	EventID string `json:"event_id"`
	Shard   int    `json:"shard"`
	Follow  Point  `json:"follow"`
	Flee    Point  `json:"flee"`
}

// Sum is a per-axis total over the window. Totals can exceed 64 bits, so
// they travel as decimal strings.
type Sum struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// ShardAverage reports the rolling average held by one shard.
type ShardAverage struct {
	Shard     int    `json:"shard"`
	State     string `json:"state"`
	Average   *Point `json:"average,omitempty"` // nil while absent
	Exact     *Point `json:"exact,omitempty"`   // mean recomputed from the window
	Drift     Point  `json:"drift"`             // per-axis |average - exact|
	FleeSum   Sum    `json:"flee_sum"`
	FollowSum Sum    `json:"follow_sum"`
	WindowLen int    `json:"window_len"`
	WindowCap int    `json:"window_cap"`
	Stored    int    `json:"stored"`
}
