// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/torus/internal/adapters/mq/queue"
	"github.com/okian/torus/internal/adapters/repository"
	"github.com/okian/torus/internal/domain/model"
	"github.com/okian/torus/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	AverageDependencies
}

// EventDependencies covers ingestion and per-identifier reads.
type EventDependencies interface {
	// Submit queues an event for its shard.
	Submit(ctx context.Context, e model.Event) error
	// Lookup returns the stored points of one identifier.
	Lookup(ctx context.Context, id uuid.UUID) (types.EventView, error)
	// Forget prunes one identifier from its store.
	Forget(ctx context.Context, id uuid.UUID) error
}

// AverageDependencies exposes the rolling averages.
type AverageDependencies interface {
	Averages(ctx context.Context) []types.ShardAverage
}

// Server wires HTTP routes for the tracker API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	averageHandler *AverageHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		averageHandler: NewAverageHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/average", MetricsMiddleware(s.averageHandler.HandleGetAverage, "average"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleEvent, "event"))
}

// eventRequest is the body of POST /events.
type eventRequest struct {
	EventID string `json:"event_id"`
}

func (e eventRequest) parse() (uuid.UUID, error) {
	raw := strings.TrimSpace(e.EventID)
	if raw == "" {
		return uuid.Nil, errors.New("missing event_id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid event_id; must be a UUID")
	}
	return id, nil
}

type ackResponse struct {
	Status  string `json:"status"`
	EventID string `json:"event_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isBackpressure reports failures the client may retry: a full shard queue or
// a caller that gave up before the event was queued.
func isBackpressure(err error) bool {
	return errors.Is(err, queue.ErrFull) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound)
}
