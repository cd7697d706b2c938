package window_test

import (
	"slices"
	"testing"

	"github.com/okian/torus/internal/domain/window"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuffer(t *testing.T) {
	Convey("Given a sliding window", t, func() {
		Convey("When it has capacity 3 and receives 1..6", func() {
			b := window.New[int](3)
			var evicted []int
			for i := 1; i <= 6; i++ {
				if v, ok := b.PushFront(i); ok {
					evicted = append(evicted, v)
				}
			}

			Convey("Then it keeps the three most recent, newest first", func() {
				So(b.Len(), ShouldEqual, 3)
				So(b.Cap(), ShouldEqual, 3)
				So(slices.Collect(b.All()), ShouldResemble, []int{6, 5, 4})

				front, ok := b.Front()
				So(ok, ShouldBeTrue)
				So(front, ShouldEqual, 6)

				back, ok := b.Back()
				So(ok, ShouldBeTrue)
				So(back, ShouldEqual, 4)
			})

			Convey("Then evictions come out oldest first", func() {
				So(evicted, ShouldResemble, []int{1, 2, 3})
			})
		})

		Convey("When it has capacity zero", func() {
			b := window.New[int](0)
			_, ok := b.PushFront(1)
			b.PushFront(2)

			Convey("Then nothing is stored", func() {
				So(ok, ShouldBeFalse)
				So(b.Len(), ShouldEqual, 0)
				So(b.Full(), ShouldBeFalse)
				_, ok := b.Front()
				So(ok, ShouldBeFalse)
				_, ok = b.Back()
				So(ok, ShouldBeFalse)
				So(slices.Collect(b.All()), ShouldBeEmpty)
			})
		})

		Convey("When a negative capacity is requested", func() {
			b := window.New[string](-5)

			Convey("Then it behaves as capacity zero", func() {
				So(b.Cap(), ShouldEqual, 0)
				b.PushFront("a")
				So(b.Len(), ShouldEqual, 0)
			})
		})

		Convey("When it has capacity 1", func() {
			b := window.New[int](1)
			b.PushFront(1)
			v, ok := b.PushFront(2)

			Convey("Then front and back are the same item", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
				front, _ := b.Front()
				back, _ := b.Back()
				So(front, ShouldEqual, 2)
				So(back, ShouldEqual, 2)
				So(b.Full(), ShouldBeTrue)
			})
		})

		Convey("When it has capacity 100 and receives 50 items", func() {
			b := window.New[int](100)
			for i := 0; i < 50; i++ {
				b.PushFront(i)
			}

			Convey("Then nothing is evicted", func() {
				So(b.Len(), ShouldEqual, 50)
				So(b.Full(), ShouldBeFalse)
				back, _ := b.Back()
				So(back, ShouldEqual, 0)
			})
		})

		Convey("When the same value is pushed twice", func() {
			b := window.New[string](4)
			b.PushFront("x")
			b.PushFront("x")

			Convey("Then both copies are kept", func() {
				So(slices.Collect(b.All()), ShouldResemble, []string{"x", "x"})
			})
		})

		Convey("When iterating", func() {
			b := window.New[int](3)
			for i := 1; i <= 4; i++ {
				b.PushFront(i)
			}

			Convey("Then the sequence is restartable", func() {
				var first, second []int
				for v := range b.All() {
					first = append(first, v)
				}
				for v := range b.All() {
					second = append(second, v)
				}
				So(first, ShouldResemble, []int{4, 3, 2})
				So(second, ShouldResemble, first)
			})

			Convey("Then breaking early stops the walk", func() {
				var got []int
				for v := range b.All() {
					got = append(got, v)
					break
				}
				So(got, ShouldResemble, []int{4})
			})
		})
	})
}

func TestBuffer_LenNeverExceedsCap(t *testing.T) {
	Convey("Given buffers of several capacities", t, func() {
		for _, c := range []int{0, 1, 2, 7, 64} {
			b := window.New[int](c)
			for i := 0; i < 3*c+5; i++ {
				b.PushFront(i)
				So(b.Len(), ShouldBeLessThanOrEqualTo, b.Cap())
			}
			if c > 0 {
				front, _ := b.Front()
				So(front, ShouldEqual, 3*c+4)
			}
		}
	})
}
