package loadgen

import (
	"time"

	"github.com/okian/torus/internal/domain/types"
)

// Config holds configuration for a load run
type Config struct {
	BaseURL     string        // Base URL of the service
	NumEvents   int           // Number of events to submit
	RepeatRatio float64       // Share of events that reuse an earlier identifier, 0..1
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Settle      time.Duration // Upper bound on waiting for queues to drain
	OutputFile  string        // Output file for submitted events
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging
}

// Event is the body of POST /events
type Event struct {
	EventID string `json:"event_id"`
}

// AckResponse represents the response from event submission
type AckResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}

// AverageResponse is the body of GET /average
type AverageResponse struct {
	Shards []types.ShardAverage `json:"shards"`
}

// Stats holds run statistics
type Stats struct {
	EventsGenerated int
	UniqueIDs       int
	EventsSubmitted int
	EventsAccepted  int
	EventsRejected  int
	EventsFailed    int
	ViewsRetrieved  int
	ViewsMissing    int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
