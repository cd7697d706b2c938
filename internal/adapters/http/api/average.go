package api

import (
	"net/http"

	"github.com/okian/torus/internal/domain/types"
)

// AverageHandler serves the per-shard rolling averages.
type AverageHandler struct {
	deps AverageDependencies
}

// NewAverageHandler creates a new average handler.
func NewAverageHandler(deps AverageDependencies) *AverageHandler {
	return &AverageHandler{deps: deps}
}

type averageResponse struct {
	Shards []types.ShardAverage `json:"shards"`
}

// HandleGetAverage handles GET /average requests.
func (h *AverageHandler) HandleGetAverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	shards := h.deps.Averages(r.Context())
	if shards == nil {
		shards = []types.ShardAverage{}
	}
	writeJSON(w, http.StatusOK, averageResponse{Shards: shards})
}
