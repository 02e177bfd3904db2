package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/aggregator"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
)

type component struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type statusResponse struct {
	Contests   int                  `json:"contests"`
	LastReload *time.Time           `json:"last_reload"`
	Report     *aggregator.Report   `json:"report"`
	Components map[string]component `json:"components"`
}

// Status reports the latest aggregation run and the state of backing
// services.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Contests:   d.MemoryIndex.Count(),
			Components: map[string]component{},
		}
		if lr := d.MemoryIndex.GetLastReload(); !lr.IsZero() {
			resp.LastReload = &lr
		}
		if rep, ok := d.MemoryIndex.Report(); ok {
			resp.Report = &rep
		}

		switch {
		case d.Redis == nil:
			resp.Components["redis"] = component{Status: "disabled"}
		default:
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := d.Redis.Ping(ctx)
			cancel()
			if err != nil {
				resp.Components["redis"] = component{Status: "down", Error: err.Error()}
			} else {
				resp.Components["redis"] = component{Status: "up"}
			}
		}

		writeJSON(d, w, http.StatusOK, resp)
	}
}
