package loadgen

import (
	"context"
	"fmt"
	"log"

	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/types"
)

// maxReportedProblems caps the problems printed per check.
const maxReportedProblems = 10

// expectedFollow is the follow point every identifier must carry. Flee points
// stay at the origin, so each rolling average is absent or the origin and the
// follow point is always the origin's antipode.
func expectedFollow(width torus.Width) types.Point {
	if width == torus.Width32 {
		x, y := torus.Antipode[uint32](0, 0)
		return types.Point{X: uint64(x), Y: uint64(y)}
	}
	x, y := torus.Antipode[uint64](0, 0)
	return types.Point{X: x, Y: y}
}

// verifyViews checks every retrieved identifier against the expected points.
func verifyViews(width torus.Width, views map[string]types.EventView) []string {
	want := expectedFollow(width)
	var problems []string
	for id, v := range views {
		if v.EventID != id {
			problems = append(problems, fmt.Sprintf("%s: view reports id %s", id, v.EventID))
		}
		if v.Flee != (types.Point{}) {
			problems = append(problems, fmt.Sprintf("%s: flee moved to (%d, %d)", id, v.Flee.X, v.Flee.Y))
		}
		if v.Follow != want {
			problems = append(problems, fmt.Sprintf("%s: follow (%d, %d), want (%d, %d)",
				id, v.Follow.X, v.Follow.Y, want.X, want.Y))
		}
	}
	return problems
}

// verifyAverages checks the shard snapshots for internal consistency.
func verifyAverages(shards []types.ShardAverage, retrieved int) []string {
	var problems []string
	stored := 0
	for _, s := range shards {
		stored += s.Stored
		if s.WindowLen > s.WindowCap {
			problems = append(problems, fmt.Sprintf("shard %d: window holds %d of %d", s.Shard, s.WindowLen, s.WindowCap))
		}
		if s.Average != nil && *s.Average != (types.Point{}) {
			problems = append(problems, fmt.Sprintf("shard %d: average (%d, %d) is not the origin", s.Shard, s.Average.X, s.Average.Y))
		}
		if s.Drift != (types.Point{}) {
			problems = append(problems, fmt.Sprintf("shard %d: drift (%d, %d)", s.Shard, s.Drift.X, s.Drift.Y))
		}
	}
	if stored < retrieved {
		problems = append(problems, fmt.Sprintf("shards store %d identifiers, %d were retrieved", stored, retrieved))
	}
	return problems
}

// verifyResults runs every check and fails on the first one with problems.
func verifyResults(_ context.Context, width torus.Width, views map[string]types.EventView, shards []types.ShardAverage) error {
	log.Println("🔍 Verifying results...")

	if problems := verifyViews(width, views); len(problems) > 0 {
		reportProblems("event views", problems)
		return fmt.Errorf("%d event views are inconsistent", len(problems))
	}
	log.Printf("✅ %d event views verified", len(views))

	if problems := verifyAverages(shards, len(views)); len(problems) > 0 {
		reportProblems("shard averages", problems)
		return fmt.Errorf("%d shard checks failed", len(problems))
	}
	log.Printf("✅ %d shard averages verified", len(shards))

	return nil
}

func reportProblems(what string, problems []string) {
	log.Printf("⚠️  %s: %d problems", what, len(problems))
	for i, p := range problems {
		if i == maxReportedProblems {
			log.Printf("   ... %d more", len(problems)-i)
			return
		}
		log.Printf("   %s", p)
	}
}
