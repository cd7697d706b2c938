package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	model "github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/smartystreets/goconvey/convey"
)

func TestEvent(t *testing.T) {
	convey.Convey("Given an Event struct", t, func() {
		convey.Convey("When creating a new event", func() {
			id := uuid.New()
			before := time.Now()
			event := model.NewEvent(id)

			convey.Convey("Then it should carry the id and a receive time", func() {
				convey.So(event.ID, convey.ShouldEqual, id)
				convey.So(event.ReceivedAt, convey.ShouldHappenOnOrAfter, before)
			})
		})

		convey.Convey("When creating an event with zero values", func() {
			event := model.Event{}

			convey.Convey("Then it should have the nil uuid", func() {
				convey.So(event.ID, convey.ShouldEqual, uuid.Nil)
				convey.So(event.ReceivedAt, convey.ShouldEqual, time.Time{})
			})
		})
	})
}

func TestEventInfo(t *testing.T) {
	convey.Convey("Given an EventInfo", t, func() {
		convey.Convey("When created from a follow point", func() {
			info := model.NewEventInfo(torus.Point[uint32]{X: 7, Y: 9})

			convey.Convey("Then flee sits at the origin", func() {
				convey.So(info.Follow(), convey.ShouldResemble, torus.Point[uint32]{X: 7, Y: 9})
				convey.So(info.Flee(), convey.ShouldResemble, torus.Point[uint32]{})
			})
		})

		convey.Convey("When every field is set", func() {
			info := model.EventInfo[uint64]{FollowX: 1, FollowY: 2, FleeX: 3, FleeY: 4}

			convey.Convey("Then the point accessors map the fields", func() {
				convey.So(info.Follow(), convey.ShouldResemble, torus.Point[uint64]{X: 1, Y: 2})
				convey.So(info.Flee(), convey.ShouldResemble, torus.Point[uint64]{X: 3, Y: 4})
			})
		})
	})
}
