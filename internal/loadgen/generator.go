package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/torus/pkg/logger"
)

// randomFloatDivisor sets the resolution of getRandomFloat.
const randomFloatDivisor = 1000000

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomIndex returns a random int in [0, n).
func getRandomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateEvents builds the submission sequence. With RepeatRatio r, roughly
// r of the events reuse an identifier that appeared earlier in the sequence.
func generateEvents(ctx context.Context, config *Config, stats *Stats) ([]Event, error) {
	if config.NumEvents <= 0 {
		return nil, fmt.Errorf("events must be positive, got %d", config.NumEvents)
	}
	if config.RepeatRatio < 0 || config.RepeatRatio > 1 {
		return nil, fmt.Errorf("repeat ratio must be within [0, 1], got %v", config.RepeatRatio)
	}

	logger.Get().Info(ctx, "generating events",
		logger.Int("numEvents", config.NumEvents),
		logger.Float64("repeatRatio", config.RepeatRatio))

	events := make([]Event, 0, config.NumEvents)
	seen := make([]string, 0, config.NumEvents)

	for i := 0; i < config.NumEvents; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during event generation: %w", err)
		}
		if len(seen) > 0 && getRandomFloat() < config.RepeatRatio {
			events = append(events, Event{EventID: seen[getRandomIndex(len(seen))]})
			continue
		}
		id := uuid.NewString()
		seen = append(seen, id)
		events = append(events, Event{EventID: id})
	}

	stats.EventsGenerated = len(events)
	stats.UniqueIDs = len(seen)
	logger.Get().Info(ctx, "generated events successfully",
		logger.Int("count", len(events)),
		logger.Int("unique", len(seen)))

	return events, nil
}

// uniqueIDs returns every identifier in events once, in first-seen order.
func uniqueIDs(events []Event) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.EventID]; ok {
			continue
		}
		seen[e.EventID] = struct{}{}
		out = append(out, e.EventID)
	}
	return out
}
