package average

import (
	"iter"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/torus"
)

// SumFlees adds up the flee points of ids found in store. Unknown ids are
// skipped.
func SumFlees[C torus.Coordinate](store Lookup[C], ids iter.Seq[uuid.UUID]) (x, y torus.Uint128) {
	x, y, _ = sum(store, ids, model.EventInfo[C].Flee)
	return x, y
}

// SumFollows adds up the follow points of ids found in store.
func SumFollows[C torus.Coordinate](store Lookup[C], ids iter.Seq[uuid.UUID]) (x, y torus.Uint128) {
	x, y, _ = sum(store, ids, model.EventInfo[C].Follow)
	return x, y
}

// Exact recomputes the mean flee point of ids by full iteration. It is the
// reference the rolling average is compared against.
func Exact[C torus.Coordinate](store Lookup[C], ids iter.Seq[uuid.UUID]) Average[C] {
	x, y, n := sum(store, ids, model.EventInfo[C].Flee)
	if n == 0 {
		return None[C]()
	}
	qx, _ := x.DivMod64(n)
	qy, _ := y.DivMod64(n)
	return Some(torus.Point[C]{X: C(qx.Lo), Y: C(qy.Lo)})
}

func sum[C torus.Coordinate](
	store Lookup[C],
	ids iter.Seq[uuid.UUID],
	pick func(model.EventInfo[C]) torus.Point[C],
) (x, y torus.Uint128, n uint64) {
	for id := range ids {
		info, ok := store.Get(id)
		if !ok {
			continue
		}
		p := pick(info)
		x = x.Add64(uint64(p.X))
		y = y.Add64(uint64(p.Y))
		n++
	}
	return x, y, n
}
