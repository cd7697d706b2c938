package loadgen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/torus/internal/adapters/http/api"
	service "github.com/okian/torus/internal/app"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/types"
	"github.com/okian/torus/pkg/logger"
)

func init() {
	if err := logger.InitWriter(io.Discard); err != nil {
		panic(err)
	}
}

func TestGenerateEvents(t *testing.T) {
	convey.Convey("Given a generator", t, func() {
		ctx := context.Background()

		convey.Convey("Without repeats every identifier is fresh", func() {
			stats := &Stats{}
			events, err := generateEvents(ctx, &Config{NumEvents: 50}, stats)
			convey.So(err, convey.ShouldBeNil)
			convey.So(events, convey.ShouldHaveLength, 50)
			convey.So(uniqueIDs(events), convey.ShouldHaveLength, 50)
			convey.So(stats.UniqueIDs, convey.ShouldEqual, 50)
		})

		convey.Convey("With only repeats a single identifier is reused", func() {
			stats := &Stats{}
			events, err := generateEvents(ctx, &Config{NumEvents: 20, RepeatRatio: 1}, stats)
			convey.So(err, convey.ShouldBeNil)
			convey.So(events, convey.ShouldHaveLength, 20)
			convey.So(uniqueIDs(events), convey.ShouldHaveLength, 1)
			convey.So(stats.EventsGenerated, convey.ShouldEqual, 20)
		})

		convey.Convey("Bad settings are rejected", func() {
			_, err := generateEvents(ctx, &Config{NumEvents: 0}, &Stats{})
			convey.So(err, convey.ShouldNotBeNil)
			_, err = generateEvents(ctx, &Config{NumEvents: 5, RepeatRatio: 1.5}, &Stats{})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestUniqueIDsKeepsFirstSeenOrder(t *testing.T) {
	convey.Convey("Given events with repeated identifiers", t, func() {
		events := []Event{{"b"}, {"a"}, {"b"}, {"c"}, {"a"}}
		convey.So(uniqueIDs(events), convey.ShouldResemble, []string{"b", "a", "c"})
	})
}

func TestVerifyViews(t *testing.T) {
	convey.Convey("Given views from a 32-bit service", t, func() {
		m := uint64(torus.Max[uint32]())
		want := types.Point{X: m / 2, Y: m / 2}
		convey.So(expectedFollow(torus.Width32), convey.ShouldResemble, want)

		convey.Convey("Follow opposite the origin and flee at the origin pass", func() {
			good := map[string]types.EventView{
				"a": {EventID: "a", Follow: want},
			}
			convey.So(verifyViews(torus.Width32, good), convey.ShouldBeEmpty)
		})

		convey.Convey("A wrong id, follow and flee are each reported", func() {
			bad := map[string]types.EventView{
				"a": {EventID: "b", Follow: types.Point{X: 1}, Flee: types.Point{Y: 2}},
			}
			convey.So(verifyViews(torus.Width32, bad), convey.ShouldHaveLength, 3)
		})
	})
}

func TestVerifyAverages(t *testing.T) {
	convey.Convey("Given shard snapshots", t, func() {
		origin := &types.Point{}
		shards := []types.ShardAverage{
			{Shard: 0, State: "steady_state", Average: origin, Exact: origin, WindowLen: 4, WindowCap: 4, Stored: 9},
			{Shard: 1, State: "empty", WindowCap: 4},
		}

		convey.Convey("Consistent snapshots pass", func() {
			convey.So(verifyAverages(shards, 9), convey.ShouldBeEmpty)
		})

		convey.Convey("Fewer stored than retrieved is reported", func() {
			convey.So(verifyAverages(shards, 10), convey.ShouldHaveLength, 1)
		})

		convey.Convey("Overfull windows, drift and a moved average are reported", func() {
			shards[1].WindowLen = 5
			shards[1].Drift = types.Point{X: 1}
			shards[1].Average = &types.Point{X: 3, Y: 3}
			convey.So(verifyAverages(shards, 0), convey.ShouldHaveLength, 3)
		})
	})
}

func TestSubmitSingleEvent(t *testing.T) {
	convey.Convey("Given a server answering with a fixed status", t, func() {
		status := http.StatusAccepted
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var e Event
			_ = json.NewDecoder(r.Body).Decode(&e)
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(AckResponse{Status: "accepted", EventID: e.EventID})
		}))
		defer srv.Close()

		client := newHTTPClient(time.Second)
		ctx := context.Background()

		convey.Convey("Each status maps to an outcome", func() {
			convey.So(submitSingleEvent(ctx, client, srv.URL, Event{EventID: "x"}), convey.ShouldEqual, outcomeAccepted)
			status = http.StatusTooManyRequests
			convey.So(submitSingleEvent(ctx, client, srv.URL, Event{EventID: "x"}), convey.ShouldEqual, outcomeRejected)
			status = http.StatusServiceUnavailable
			convey.So(submitSingleEvent(ctx, client, srv.URL, Event{EventID: "x"}), convey.ShouldEqual, outcomeFailed)
		})
	})
}

func TestRunAgainstService(t *testing.T) {
	convey.Convey("Given a running service behind the HTTP API", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithShardCount(3),
			service.WithWindowCapacity(4),
			service.WithCoordinateWidth(torus.Width32),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("A full run verifies and saves every event", func() {
			out := filepath.Join(t.TempDir(), "events.json")
			cfg := &Config{
				BaseURL:     srv.URL,
				NumEvents:   300,
				RepeatRatio: 0.3,
				Workers:     4,
				Timeout:     5 * time.Second,
				Settle:      5 * time.Second,
				OutputFile:  out,
			}
			convey.So(Run(ctx, cfg), convey.ShouldBeNil)

			data, err := os.ReadFile(out)
			convey.So(err, convey.ShouldBeNil)
			var saved []Event
			convey.So(json.Unmarshal(data, &saved), convey.ShouldBeNil)
			convey.So(saved, convey.ShouldHaveLength, 300)
		})
	})
}
