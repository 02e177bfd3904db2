package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/contesthub/internal/domain"
	"github.com/MrSnakeDoc/contesthub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/contesthub/internal/index"
)

type contestsResponse struct {
	Count      int              `json:"count"`
	LastReload *time.Time       `json:"last_reload"`
	Contests   []domain.Contest `json:"contests"`
}

// Contests lists the aggregated contests, reclassified at request time.
//
// Query parameters (all optional):
//
//	status=UPCOMING|RUNNING|PAST
//	source=codeforces|codechef|leetcode
//	q=free text matched against the contest name
func Contests(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f index.Filter
		if raw := q.Get("status"); raw != "" {
			st, ok := domain.ParseStatus(raw)
			if !ok {
				writeError(d, w, http.StatusBadRequest, "invalid status: "+raw)
				return
			}
			f.Status = st
		}
		f.Source = domain.SourceName(strings.ToLower(strings.TrimSpace(q.Get("source"))))
		f.Text = q.Get("q")

		contests := d.MemoryIndex.Query(f, d.Now())

		resp := contestsResponse{Count: len(contests), Contests: contests}
		if lr := d.MemoryIndex.GetLastReload(); !lr.IsZero() {
			resp.LastReload = &lr
		}
		writeJSON(d, w, http.StatusOK, resp)
	}
}
