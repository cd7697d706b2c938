package processor_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/average"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/processor"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProcess(t *testing.T) {
	Convey("Given a processor over 32-bit coordinates", t, func() {
		ctx := context.Background()
		p := processor.New[uint32]()
		buf := window.New[uuid.UUID](3)
		store := repository.NewMapStore[uint32]()
		m := torus.Max[uint32]()

		Convey("When the first event arrives", func() {
			id := uuid.New()
			res, err := p.Process(ctx, model.NewEvent(id), buf, store, average.None[uint32]())

			Convey("Then it is stored opposite the origin with flee at the origin", func() {
				So(err, ShouldBeNil)
				So(res.State, ShouldEqual, average.Empty)
				So(res.Average.Valid, ShouldBeFalse)
				So(res.Inserted, ShouldBeTrue)
				So(res.Info.Follow(), ShouldResemble, torus.Point[uint32]{X: m / 2, Y: m / 2})
				So(res.Info.Flee(), ShouldResemble, torus.Point[uint32]{})

				stored, ok := store.Get(id)
				So(ok, ShouldBeTrue)
				So(stored, ShouldResemble, res.Info)
			})

			Convey("Then it is pushed onto the window", func() {
				front, ok := buf.Front()
				So(ok, ShouldBeTrue)
				So(front, ShouldEqual, id)
				So(res.DidEvict, ShouldBeFalse)
			})
		})

		Convey("When a known identifier arrives again", func() {
			id := uuid.New()
			existing := model.EventInfo[uint32]{FollowX: 1, FollowY: 2, FleeX: 3, FleeY: 4}
			store.InsertOrLookup(id, func() model.EventInfo[uint32] { return existing })

			res, err := p.Process(ctx, model.NewEvent(id), buf, store, average.None[uint32]())

			Convey("Then its entry is unchanged but it still enters the window", func() {
				So(err, ShouldBeNil)
				So(res.Inserted, ShouldBeFalse)
				So(res.Info, ShouldResemble, existing)
				So(store.Len(), ShouldEqual, 1)
				So(buf.Len(), ShouldEqual, 1)
			})

			Convey("And it arrives a second time", func() {
				_, err := p.Process(ctx, model.NewEvent(id), buf, store, res.Average)

				Convey("Then the window holds it twice", func() {
					So(err, ShouldBeNil)
					So(slices.Collect(buf.All()), ShouldResemble, []uuid.UUID{id, id})
				})
			})
		})

		Convey("When the window overflows", func() {
			ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
			prev := average.None[uint32]()
			var last processor.Result[uint32]
			for _, id := range ids {
				res, err := p.Process(ctx, model.NewEvent(id), buf, store, prev)
				So(err, ShouldBeNil)
				prev, last = res.Average, res
			}

			Convey("Then the oldest identifier is reported as evicted but kept in the store", func() {
				So(last.DidEvict, ShouldBeTrue)
				So(last.Evicted, ShouldEqual, ids[0])
				So(buf.Len(), ShouldEqual, 3)
				So(store.Len(), ShouldEqual, 4)
				_, ok := store.Get(ids[0])
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the window has capacity zero", func() {
			empty := window.New[uuid.UUID](0)
			prev := average.None[uint32]()
			for i := 0; i < 3; i++ {
				res, err := p.Process(ctx, model.NewEvent(uuid.New()), empty, store, prev)
				So(err, ShouldBeNil)
				So(res.State, ShouldEqual, average.Empty)
				prev = res.Average
			}

			Convey("Then every follow point is the antipode of the origin", func() {
				store.Range(func(_ uuid.UUID, info model.EventInfo[uint32]) bool {
					So(info.Follow(), ShouldResemble, torus.Point[uint32]{X: m / 2, Y: m / 2})
					return true
				})
				So(store.Len(), ShouldEqual, 3)
				So(empty.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSessionEndToEnd(t *testing.T) {
	Convey("Given a 64-bit session with two pre-populated identifiers", t, func() {
		ctx := context.Background()
		m := torus.Max[uint64]()
		e := m / 8

		store := repository.NewMapStore[uint64]()
		id1, id2, id3 := uuid.New(), uuid.New(), uuid.New()
		flee1 := model.EventInfo[uint64]{FleeX: 5 * e, FleeY: e}
		flee2 := model.EventInfo[uint64]{FleeX: 3 * e, FleeY: m - e}
		store.InsertOrLookup(id1, func() model.EventInfo[uint64] { return flee1 })
		store.InsertOrLookup(id2, func() model.EventInfo[uint64] { return flee2 })

		s := processor.NewSession[uint64](4, store)

		Convey("When three events are ingested", func() {
			r1, err := s.Ingest(ctx, model.NewEvent(id1))
			So(err, ShouldBeNil)
			r2, err := s.Ingest(ctx, model.NewEvent(id2))
			So(err, ShouldBeNil)
			r3, err := s.Ingest(ctx, model.NewEvent(id3))
			So(err, ShouldBeNil)

			Convey("Then the states follow the window", func() {
				So(r1.State, ShouldEqual, average.Empty)
				So(r2.State, ShouldEqual, average.FirstElement)
				So(r3.State, ShouldEqual, average.Growing)
			})

			Convey("Then the pre-populated entries are untouched", func() {
				So(r1.Inserted, ShouldBeFalse)
				So(r2.Inserted, ShouldBeFalse)
				got, _ := s.Store().Get(id1)
				So(got, ShouldResemble, flee1)
			})

			Convey("Then the average is the mean of the two flee points", func() {
				So(r2.Average.Point, ShouldResemble, flee1.Flee())
				So(r3.Average.Point, ShouldResemble, torus.Point[uint64]{X: 4 * e, Y: m / 2})
				So(s.Previous(), ShouldResemble, r3.Average)
			})

			Convey("Then the new follow point is the antipode of that mean", func() {
				So(r3.Inserted, ShouldBeTrue)
				want := torus.Point[uint64]{X: 4*e + m/2, Y: m - 1}
				So(r3.Info.Follow(), ShouldResemble, want)
				So(r3.Info.Flee(), ShouldResemble, torus.Point[uint64]{})

				sumX, sumY := average.SumFlees(s.Store(), s.Window().All())
				So(sumX.Lo, ShouldEqual, 8*e)
				notMean := torus.Point[uint64]{X: sumX.Lo, Y: sumY.Lo}.Antipode()
				So(r3.Info.Follow(), ShouldNotResemble, notMean)
			})
		})
	})
}

func TestSessionDefaults(t *testing.T) {
	Convey("Given a session without a store", t, func() {
		s := processor.NewSession[uint32](2, nil)

		Convey("Then it creates one and starts absent", func() {
			So(s.Store(), ShouldNotBeNil)
			So(s.Previous().Valid, ShouldBeFalse)
			So(s.Window().Cap(), ShouldEqual, 2)
		})
	})
}

func TestIngestError(t *testing.T) {
	Convey("Given an IngestError", t, func() {
		id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		var err error = &processor.IngestError{ID: id}

		Convey("Then it matches the ingest kind and names the id", func() {
			So(errors.Is(err, processor.ErrIngest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "ingest event 6ba7b810-9dad-11d1-80b4-00c04fd430c8")

			var target *processor.IngestError
			So(errors.As(err, &target), ShouldBeTrue)
			So(target.ID, ShouldEqual, id)
		})
	})
}

func TestSessionCurrent(t *testing.T) {
	Convey("Given a session with two ingested events", t, func() {
		ctx := context.Background()
		s := processor.NewSession[uint32](4, nil)
		_, _ = s.Ingest(ctx, model.NewEvent(uuid.New()))
		_, _ = s.Ingest(ctx, model.NewEvent(uuid.New()))

		Convey("Then Current covers the window including the newest event", func() {
			avg, state := s.Current()
			So(state, ShouldEqual, average.Growing)
			So(avg.Valid, ShouldBeTrue)
			So(avg.Point, ShouldResemble, torus.Point[uint32]{})

			again, _ := s.Current()
			So(again, ShouldResemble, avg)
			So(s.Window().Len(), ShouldEqual, 2)
		})
	})
}
