package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/average"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/processor"
	"github.com/okian/torus/internal/domain/torus"
	"github.com/okian/torus/internal/domain/types"
	"github.com/okian/torus/pkg/logger"
	"github.com/okian/torus/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// engine hides the coordinate width of a shard from the service.
type engine interface {
	Ingest(ctx context.Context, e model.Event) error
	Lookup(id uuid.UUID) (types.EventView, bool)
	Forget(id uuid.UUID) bool
	Snapshot() types.ShardAverage
	Sizes() (window, store int)
}

// shardConfig carries what a shard needs beyond its coordinate width.
type shardConfig struct {
	id       int
	capacity int
	log      logger.Logger
	tracer   trace.Tracer
	sizeHint int // expected identifiers per shard
}

// newEngine creates a shard for the configured width.
func newEngine(w torus.Width, opts shardConfig) (engine, error) {
	switch w {
	case torus.Width32:
		return newShard[uint32](opts)
	case torus.Width64:
		return newShard[uint64](opts)
	default:
		_, err := torus.ParseWidth(int(w))
		return nil, err
	}
}

// shard owns one tracker session. Ingest is only called by the shard's
// worker; the mutex is there for the HTTP read paths.
type shard[C torus.Coordinate] struct {
	id     int
	label  string
	mu     sync.Mutex
	sess   *processor.Session[C]
	tracer trace.Tracer
}

func newShard[C torus.Coordinate](opts shardConfig) (*shard[C], error) {
	label := strconv.Itoa(opts.id)
	log := opts.log.Named("shard-" + label)

	sh := &shard[C]{
		id:    opts.id,
		label: label,
		sess: processor.NewSession[C](opts.capacity,
			repository.NewMapStore[C](repository.WithSizeHint(opts.sizeHint)),
			processor.WithLogger(log),
		),
		tracer: opts.tracer,
	}
	metrics.UpdateShardState(label, 0, 0)
	return sh, nil
}

func (s *shard[C]) Ingest(ctx context.Context, e model.Event) error {
	ctx, span := s.tracer.Start(ctx, "torus.ingest", trace.WithAttributes(
		attribute.String("event.id", e.ID.String()),
		attribute.Int("shard", s.id),
	))
	defer span.End()

	start := time.Now()
	s.mu.Lock()
	res, err := s.sess.Ingest(ctx, e)
	windowLen, storeLen := s.sess.Window().Len(), s.sess.Store().Len()
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest failed")
		return err
	}

	span.SetAttributes(
		attribute.String("average.state", res.State.String()),
		attribute.Bool("average.valid", res.Average.Valid),
		attribute.Bool("event.inserted", res.Inserted),
		attribute.Bool("window.evicted", res.DidEvict),
	)

	metrics.RecordIngest(res.Inserted, res.State.String(), !res.Average.Valid,
		float64(time.Since(start).Microseconds())/1000)
	if res.DidEvict {
		metrics.RecordWindowEviction()
	}
	metrics.UpdateShardState(s.label, windowLen, storeLen)
	return nil
}

func (s *shard[C]) Lookup(id uuid.UUID) (types.EventView, bool) {
	s.mu.Lock()
	info, ok := s.sess.Store().Get(id)
	s.mu.Unlock()
	if !ok {
		return types.EventView{}, false
	}
	return types.EventView{
		EventID: id.String(),
		Shard:   s.id,
		Follow:  toView(info.Follow()),
		Flee:    toView(info.Flee()),
	}, true
}

func (s *shard[C]) Forget(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Store().Delete(id)
}

// Snapshot reports the average the next event would see, the exact mean of
// the window, the per-axis gap between the two and the window totals.
func (s *shard[C]) Snapshot() types.ShardAverage {
	s.mu.Lock()
	current, state := s.sess.Current()
	store, ids := s.sess.Store(), s.sess.Window().All()
	exact := average.Exact(store, ids)
	fleeX, fleeY := average.SumFlees(store, ids)
	followX, followY := average.SumFollows(store, ids)
	out := types.ShardAverage{
		Shard:     s.id,
		State:     state.String(),
		WindowLen: s.sess.Window().Len(),
		WindowCap: s.sess.Window().Cap(),
		Stored:    store.Len(),
		FleeSum:   types.Sum{X: fleeX.String(), Y: fleeY.String()},
		FollowSum: types.Sum{X: followX.String(), Y: followY.String()},
	}
	s.mu.Unlock()

	if p, ok := current.Get(); ok {
		v := toView(p)
		out.Average = &v
	}
	if p, ok := exact.Get(); ok {
		v := toView(p)
		out.Exact = &v
	}
	if out.Average != nil && out.Exact != nil {
		out.Drift = types.Point{
			X: absDiff(out.Average.X, out.Exact.X),
			Y: absDiff(out.Average.Y, out.Exact.Y),
		}
	}
	return out
}

func (s *shard[C]) Sizes() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Window().Len(), s.sess.Store().Len()
}

func toView[C torus.Coordinate](p torus.Point[C]) types.Point {
	return types.Point{X: uint64(p.X), Y: uint64(p.Y)}
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
