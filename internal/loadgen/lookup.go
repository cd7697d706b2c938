package loadgen

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/okian/torus/internal/domain/types"
	"github.com/okian/torus/pkg/logger"
)

// waitForDrain polls /stats until no shard queue holds events or the settle
// bound expires.
func waitForDrain(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"

	settle := config.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	deadline := time.Now().Add(settle)
	ticker := time.NewTicker(settlePollInterval)
	defer ticker.Stop()

	for {
		var stats map[string]any
		if _, err := client.getJSON(ctx, url, &stats); err == nil {
			if n, ok := stats["queueLength"].(float64); ok && n == 0 {
				return nil
			}
		}
		if time.Now().After(deadline) {
			logger.Get().Warn(ctx, "queues did not drain before the settle deadline", logger.String("settle", settle.String()))
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for drain: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// retrieveViews fetches GET /events/{id} for every id concurrently.
func retrieveViews(ctx context.Context, config *Config, ids []string, stats *Stats) (map[string]types.EventView, error) {
	log.Printf("🔎 Retrieving %d event views...", len(ids))

	client := newHTTPClient(config.Timeout)

	var (
		mu      sync.Mutex
		views   = make(map[string]types.EventView, len(ids))
		missing int
	)

	idChan := make(chan string, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idChan {
				var view types.EventView
				code, err := client.getJSON(ctx, config.BaseURL+"/events/"+id, &view)
				mu.Lock()
				if err == nil && code == http.StatusOK {
					views[id] = view
				} else {
					missing++
					if config.Verbose {
						log.Printf("⚠️  No view for %s (status %d, err %v)", id, code, err)
					}
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(idChan)
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return
			case idChan <- id:
			}
		}
	}()
	wg.Wait()

	stats.ViewsRetrieved = len(views)
	stats.ViewsMissing = missing
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("retrieving views: %w", err)
	}
	return views, nil
}

// getAverages fetches GET /average.
func getAverages(ctx context.Context, config *Config) ([]types.ShardAverage, error) {
	var resp AverageResponse
	code, err := newHTTPClient(config.Timeout).getJSON(ctx, config.BaseURL+"/average", &resp)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("average request failed with status: %d", code)
	}
	return resp.Shards, nil
}

// getCoordinateWidth reads the deployment's coordinate width from /stats.
func getCoordinateWidth(ctx context.Context, config *Config) (int, error) {
	var stats map[string]any
	code, err := newHTTPClient(config.Timeout).getJSON(ctx, config.BaseURL+"/stats", &stats)
	if err != nil {
		return 0, err
	}
	if code != http.StatusOK {
		return 0, fmt.Errorf("stats request failed with status: %d", code)
	}
	w, ok := stats["coordinateWidth"].(float64)
	if !ok {
		return 0, fmt.Errorf("stats carry no coordinateWidth")
	}
	return int(w), nil
}
