package service_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	service "github.com/okian/torus/internal/app"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/types"
	"github.com/okian/torus/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// eventually polls cond until it holds or five seconds pass.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func stored(svc *service.Service) int {
	n, _ := svc.GetStats()["storedEvents"].(int)
	return n
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it reports sensible defaults before starting", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["shardCount"], ShouldEqual, 4)
			So(stats["windowCapacity"], ShouldEqual, 64)
			So(stats["coordinateWidth"], ShouldEqual, 64)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithShardCount(2),
			service.WithQueueSize(50),
			service.WithWindowCapacity(0),
			service.WithCoordinateWidth(torus.Width32),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["shardCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 50)
			So(stats["windowCapacity"], ShouldEqual, 0)
			So(stats["coordinateWidth"], ShouldEqual, 32)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then every operation reports it", func() {
			So(errors.Is(svc.Submit(ctx, model.NewEvent(uuid.New())), service.ErrNotStarted), ShouldBeTrue)
			_, err := svc.Lookup(ctx, uuid.New())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})

	Convey("Given a service with an unsupported width", t, func() {
		svc := service.New(service.WithCoordinateWidth(torus.Width(16)))

		Convey("Then Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, torus.ErrUnsupportedWidth), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithShardCount(2))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then one worker runs per shard", func() {
			So(svc.GetStats()["workers"], ShouldEqual, 2)
			_ = svc.Stop(ctx)
		})

		Convey("When it is stopped", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it can be stopped again and reports not started", func() {
				So(svc.Stop(ctx), ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SingleShard(t *testing.T) {
	Convey("Given a single 32-bit shard with a window of two", t, func() {
		svc := service.New(
			service.WithShardCount(1),
			service.WithWindowCapacity(2),
			service.WithCoordinateWidth(torus.Width32),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		m := uint64(torus.Max[uint32]())

		Convey("When the first event is applied", func() {
			id := uuid.New()
			So(svc.Submit(ctx, model.NewEvent(id)), ShouldBeNil)
			So(eventually(func() bool { return stored(svc) == 1 }), ShouldBeTrue)

			Convey("Then its follow point is opposite the origin", func() {
				view, err := svc.Lookup(ctx, id)
				So(err, ShouldBeNil)
				So(view.EventID, ShouldEqual, id.String())
				So(view.Follow.X, ShouldEqual, m/2)
				So(view.Follow.Y, ShouldEqual, m/2)
				So(view.Flee.X, ShouldEqual, uint64(0))
			})

			Convey("Then the shard reports the window", func() {
				avgs := svc.Averages(ctx)
				So(len(avgs), ShouldEqual, 1)
				So(avgs[0].WindowLen, ShouldEqual, 1)
				So(avgs[0].WindowCap, ShouldEqual, 2)
				So(avgs[0].State, ShouldEqual, "first_element")
				So(avgs[0].Average, ShouldNotBeNil)
				So(*avgs[0].Average, ShouldResemble, *avgs[0].Exact)
			})

			Convey("Then the window totals hold its points", func() {
				avgs := svc.Averages(ctx)
				half := strconv.FormatUint(m/2, 10)
				So(avgs[0].FollowSum, ShouldResemble, types.Sum{X: half, Y: half})
				So(avgs[0].FleeSum, ShouldResemble, types.Sum{X: "0", Y: "0"})
			})
		})

		Convey("When the same identifier arrives twice", func() {
			id := uuid.New()
			So(svc.Submit(ctx, model.NewEvent(id)), ShouldBeNil)
			So(svc.Submit(ctx, model.NewEvent(id)), ShouldBeNil)
			So(eventually(func() bool {
				v, _ := svc.GetStats()["windowedEvents"].(int)
				return v == 2
			}), ShouldBeTrue)

			Convey("Then it is stored once but windowed twice", func() {
				So(stored(svc), ShouldEqual, 1)
				full := strconv.FormatUint(2*(m/2), 10)
				So(svc.Averages(ctx)[0].FollowSum, ShouldResemble, types.Sum{X: full, Y: full})
			})
		})

		Convey("When an identifier is forgotten", func() {
			id := uuid.New()
			So(svc.Submit(ctx, model.NewEvent(id)), ShouldBeNil)
			So(eventually(func() bool { return stored(svc) == 1 }), ShouldBeTrue)
			So(svc.Forget(ctx, id), ShouldBeNil)

			Convey("Then lookups miss", func() {
				_, err := svc.Lookup(ctx, id)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(svc.Forget(ctx, id), repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the caller context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			err := svc.Submit(cancelled, model.NewEvent(uuid.New()))

			Convey("Then the event is rejected", func() {
				So(errors.Is(err, service.ErrRejected), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
