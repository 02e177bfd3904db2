package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz is the liveness probe. It never touches dependencies.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(d, w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: d.Now().Sub(start).Seconds(),
		})
	}
}

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Contests int    `json:"contests"`
	Redis    string `json:"redis"`
}

// Readyz reports ready once contest data is loaded (from a run or a
// snapshot) and Redis answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Redis: "disabled"}

		loaded := false
		if d.MemoryIndex != nil {
			resp.Contests = d.MemoryIndex.Count()
			_, hasReport := d.MemoryIndex.Report()
			loaded = resp.Contests > 0 || hasReport
		}

		redisOK := true
		if d.Redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := d.Redis.Ping(ctx)
			cancel()
			if err != nil {
				redisOK = false
				resp.Redis = "down"
				d.Logger.Warn("readyz: redis ping failed", logger.Error(err))
			} else {
				resp.Redis = "up"
			}
		}

		resp.Ready = loaded && redisOK
		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(d, w, status, resp)
	}
}
